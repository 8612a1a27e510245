package filehttp

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"

	"github.com/yourname/notebook_files/internal/config"
	"github.com/yourname/notebook_files/internal/usecase/filesvc"
	"github.com/yourname/notebook_files/internal/usecase/ingest"
	"github.com/yourname/notebook_files/internal/usecase/quota"
	"github.com/yourname/notebook_files/pkg/fileproto"
	"github.com/yourname/notebook_files/pkg/notebookclient"
)

const throttleBacklogTimeout = time.Minute

// Server обслуживает HTTP API поверх файловой системы.
type Server struct {
	FilesService filesvc.Service
	Janitor      *quota.Janitor
	Cfg          config.Config
	logger       *log.Logger
}

// NewServer собирает зависимости по конфигурации и возвращает готовый обработчик.
func NewServer(cfg config.Config, logger *log.Logger) (http.Handler, *Server, error) {
	return NewServerFs(afero.NewOsFs(), cfg, logger)
}

// NewServerFs делает то же, что NewServer, но поверх произвольной файловой системы.
func NewServerFs(fs afero.Fs, cfg config.Config, logger *log.Logger) (http.Handler, *Server, error) {
	files, janitor, err := buildFileService(fs, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	srv := &Server{
		FilesService: files,
		Janitor:      janitor,
		Cfg:          cfg,
		logger:       logger.WithPrefix("http"),
	}

	return srv.routes(), srv, nil
}

func buildFileService(fs afero.Fs, cfg config.Config, logger *log.Logger) (filesvc.Service, *quota.Janitor, error) {
	if err := fs.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create upload dir: %w", err)
	}
	if _, err := fs.Stat(cfg.FileDir); err != nil {
		if !os.IsNotExist(err) {
			return nil, nil, err
		}
		logger.Warn("file dir does not exist yet", "dir", cfg.FileDir)
	}

	evictor := quota.NewEvictor(fs, cfg.UploadDir, int64(cfg.UploadDirMaxSize), logger)
	janitor := quota.NewJanitor(evictor, logger)

	files := filesvc.New(filesvc.Deps{
		Results:  afero.NewBasePathFs(fs, cfg.FileDir),
		Ingestor: ingest.New(fs, cfg.UploadDir, logger),
		Notebook: notebookclient.New(cfg.NotifyMethod, cfg.NotifyTimeout),
		Janitor:  janitor,
		Stats:    evictor,
		Logger:   logger.WithPrefix("files"),
	})

	return files, janitor, nil
}

// routes регистрирует обработчики скачивания, загрузки, здоровья и GC.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get(fileproto.HealthPath, s.health)
	r.Post(fileproto.ManualGCPath, s.gcOnce)

	r.Route(strings.TrimRight(s.Cfg.FilesPrefix, "/"), func(fr chi.Router) {
		fr.Use(middleware.ThrottleBacklog(s.Cfg.MaxConcurrent, s.Cfg.MaxConcurrent, throttleBacklogTimeout))
		// метод проверяет сам обработчик: на всё, кроме POST, отвечаем 405
		fr.HandleFunc(fileproto.UploadSubpath, s.upload)
		fr.Get("/*", s.download)
	})

	return r
}
