package filesvc

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/yourname/notebook_files/internal/models"
	"github.com/yourname/notebook_files/pkg/notebookclient"
)

type (
	// Ingestor разбирает тело загрузки и пишет файл на диск.
	Ingestor interface {
		Ingest(ctx context.Context, body io.Reader, marker string) (models.ParsedUpload, error)
	}

	// Janitor следит за размером каталога загрузок.
	Janitor interface {
		Trigger()
		RunNow(ctx context.Context) models.EvictionReport
	}

	// DirStater отдаёт снимок занятого места.
	DirStater interface {
		Stats() (models.DirStats, error)
	}

	// Service объединяет операции по загрузке и выдаче файлов.
	Service interface {
		Upload(ctx context.Context, body io.Reader, contentType string) (models.ParsedUpload, error)
		Open(ctx context.Context, relPath string) (io.ReadCloser, os.FileInfo, error)
		Evict(ctx context.Context) models.EvictionReport
		UploadStats() (models.DirStats, error)
	}
)

type Deps struct {
	// Results: файловая система с результатами запросов, ограниченная корнем file_dir.
	Results  afero.Fs
	Ingestor Ingestor
	Notebook notebookclient.Client
	Janitor  Janitor
	Stats    DirStater
	Logger   *log.Logger
}

type Files struct {
	Deps
}

// New конструирует сервис с заданными зависимостями.
func New(deps Deps) *Files {
	return &Files{Deps: deps}
}

var _ Service = (*Files)(nil)

// Evict запускает проход очистки синхронно.
func (s *Files) Evict(ctx context.Context) models.EvictionReport {
	return s.Janitor.RunNow(ctx)
}

// UploadStats возвращает занятое место в каталоге загрузок.
func (s *Files) UploadStats() (models.DirStats, error) {
	return s.Stats.Stats()
}
