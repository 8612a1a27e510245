package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/yourname/notebook_files/internal/app/filehttp"
	"github.com/yourname/notebook_files/internal/config"
	"github.com/yourname/notebook_files/internal/logging"
	"github.com/yourname/notebook_files/internal/usecase/quota"
)

const shutdownTimeout = 15 * time.Second

// cliFlags хранит значения флагов. Они применяются поверх YAML и окружения, только если заданы явно.
type cliFlags struct {
	configPath string
	host       string
	port       int
	fileDir    string
	uploadDir  string
	maxSize    string
	logLevel   string
}

func newRootCommand(ctx context.Context) *cobra.Command {
	var f cliFlags

	root := &cobra.Command{
		Use:           "fileserver",
		Short:         "File side-service for the notebook: result downloads and browser uploads.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return serve(ctx, cfg, logging.New(cmd.ErrOrStderr(), cfg.LogLevel))
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "path to YAML config (default $CONFIG_PATH or ./config.yaml)")
	pf.StringVar(&f.host, "host", "", "listen host")
	pf.IntVarP(&f.port, "port", "p", config.DefaultPort, "listen port")
	pf.StringVar(&f.fileDir, "file-dir", "", "directory with result files served for download")
	pf.StringVar(&f.uploadDir, "upload-dir", "", "directory for uploaded files")
	pf.StringVar(&f.maxSize, "max-size", "", "upload dir ceiling, e.g. 100GB")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(newEvictCommand(ctx, &f))

	return root
}

// newEvictCommand выполняет один проход очистки каталога загрузок и печатает отчёт.
func newEvictCommand(ctx context.Context, f *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "evict",
		Short: "Run a single eviction pass over the upload dir and print the report as JSON.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return err
			}

			logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			ev := quota.NewEvictor(afero.NewOsFs(), cfg.UploadDir, int64(cfg.UploadDirMaxSize), logger)
			report := ev.Evict(ctx)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

// loadConfig читает конфигурацию и накладывает явно заданные флаги.
func loadConfig(cmd *cobra.Command, f cliFlags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = f.host
	}
	if flags.Changed("port") {
		cfg.Port = f.port
	}
	if flags.Changed("file-dir") {
		cfg.FileDir = f.fileDir
	}
	if flags.Changed("upload-dir") {
		cfg.UploadDir = f.uploadDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if flags.Changed("max-size") {
		v, err := config.ParseByteSize(f.maxSize)
		if err != nil {
			return config.Config{}, err
		}
		cfg.UploadDirMaxSize = v
	}

	return cfg, cfg.Validate()
}

// serve поднимает HTTP-сервер и фоновую очистку, а при отмене ctx корректно их останавливает.
func serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	handler, srv, err := filehttp.NewServer(cfg, logger)
	if err != nil {
		return err
	}

	stopSweep := srv.Janitor.Start(cfg.SweepInterval)
	defer func() {
		stopSweep()
		srv.Janitor.Wait()
	}()

	server := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 30 * time.Second,
	}

	// graceful shutdown по SIGTERM/SIGINT
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("shutdown error", "err", err)
		}
	}()

	logger.Info("file server listening",
		"addr", cfg.ListenAddr(),
		"file_dir", cfg.FileDir,
		"upload_dir", cfg.UploadDir,
		"max_size", cfg.UploadDirMaxSize.String(),
		"upload_path", cfg.UploadPath(),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
