package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mateusbrg/user-registry/internal/config"
	"github.com/mateusbrg/user-registry/internal/server"
	"github.com/mateusbrg/user-registry/internal/storage"
	"github.com/mateusbrg/user-registry/internal/storage/jsonfile"
	"github.com/mateusbrg/user-registry/internal/storage/postgres"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var store storage.UserStore
	if cfg.DatabaseURL != "" {
		pgStore, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("init database", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()
		store = pgStore
	} else {
		store = jsonfile.New(cfg.DatabasePath)
	}

	srv := server.New(cfg, store, logger)

	go func() {
		logger.Info("user registry listening", "addr", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", "error", err)
	}
}
