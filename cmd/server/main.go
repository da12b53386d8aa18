package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MungomeniTM/VSX-changeZA-web/internal/config"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/database"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/logging"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/routes"
	"github.com/MungomeniTM/VSX-changeZA-web/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.Log.Level)
	if logging.ParseLevel(cfg.Log.Level) > logging.ParseLevel("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fallback 로직으로 데이터베이스 초기화
	db, err := database.InitWithFallback(cfg.Database.Primary, cfg.Database.Fallback, database.Options{
		Pool:     cfg.Database.Pool,
		LogLevel: cfg.Database.LogLevel,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error(context.Background(), "failed to close database", "error", err)
		}
	}()

	info := db.GetInfo()
	logger.Info(ctx, "database info", "driver", info.Driver, "fallback", info.IsFallback)

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           routes.SetupRoutes(db, store, cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", srv.Addr, "api_prefix", cfg.Server.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Backend {
	case config.StorageS3:
		return storage.NewS3Storage(ctx, cfg.Storage.S3)
	default:
		return storage.NewLocalStorage(cfg.Upload.Dir, cfg.Upload.URLPrefix)
	}
}
