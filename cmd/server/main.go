// Command stance-server runs the stance authentication HTTP server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/stancehq/stance/internal/config"
	"github.com/stancehq/stance/internal/server"
	"github.com/stancehq/stance/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version = "dev"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	// Retention sweep. Not part of the auth flow: expired rows are already
	// unusable, this just keeps the table from growing forever.
	if deleted, err := store.DeleteExpiredTokens(ctx); err != nil {
		logger.Warn("failed to delete expired refresh tokens", slog.Any("error", err))
	} else if deleted > 0 {
		logger.Info("deleted expired refresh tokens", slog.Int("count", deleted))
	}

	srv, err := server.New(cfg, logger, store, Version)
	if err != nil {
		logger.Error("failed to build server", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting stance server", slog.String("version", Version), slog.String("addr", cfg.Address))

	if err := srv.Run(ctx); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}
