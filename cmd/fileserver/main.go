package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourname/notebook_files/internal/logging"
)

// main собирает CLI и завершает процесс с ненулевым кодом при ошибке.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.New(os.Stderr, os.Getenv("LOG_LEVEL"))

	if err := newRootCommand(ctx).Execute(); err != nil {
		logger.Error("fileserver failed", "err", err)
		stop()
		os.Exit(1)
	}
}
