package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"livestock-registry/internal/adapters/auth/remote"
	"livestock-registry/internal/adapters/directory/registry"
	"livestock-registry/internal/adapters/extraction/recognizer"
	pg "livestock-registry/internal/adapters/storage/postgres"
	"livestock-registry/internal/platform/config"
	"livestock-registry/internal/platform/httpclient"
	"livestock-registry/internal/platform/logger"
	"livestock-registry/internal/router"
)

// @title Livestock Registry API
// @version 1.0
// @description Registro de identificación de bovinos, re-crotalado y crecimiento.
// @BasePath /
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logger.NewFromEnv().Error("config error", map[string]any{"err": err})
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, App: cfg.App})

	if err := run(cfg, log); err != nil {
		log.Error("server error", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	opts := router.Options{Logger: log}

	if cfg.DBDSN != "" {
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer func(db *sql.DB) { _ = db.Close() }(db)
		opts.DB = db
		log.Info("storage: postgres", nil)
	} else {
		log.Info("storage: in-memory", nil)
	}

	if cfg.Auth.Enabled() {
		c, err := upstreamClient(cfg.Auth)
		if err != nil {
			return err
		}
		opts.AuthVerifier = remote.NewVerifier(c)
	} else {
		log.Warn("auth: dev mode, X-Debug-User-ID accepted", nil)
	}

	if cfg.Directory.Enabled() {
		c, err := upstreamClient(cfg.Directory)
		if err != nil {
			return err
		}
		opts.Directory = registry.NewClient(c)
	}

	if cfg.Recognizer.Enabled() {
		c, err := upstreamClient(cfg.Recognizer)
		if err != nil {
			return err
		}
		opts.Extractor = recognizer.NewClient(c, cfg.RecognizerMinConfidence)
	}

	h, err := router.NewRouter(opts)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Addr()})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down", nil)
	return srv.Shutdown(shutdownCtx)
}

func upstreamClient(u config.Upstream) (*httpclient.Client, error) {
	return httpclient.New(httpclient.Config{
		BaseURL: u.URL,
		APIKey:  u.APIKey,
		Timeout: u.Timeout,
	})
}
