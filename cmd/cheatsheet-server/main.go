package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"cheatsheets/pkg/auth"
	"cheatsheets/pkg/config"
	"cheatsheets/pkg/handlers"
	"cheatsheets/pkg/logging"
	"cheatsheets/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.New(logging.Options{
		Service: "cheatsheet-server",
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Debug:   cfg.Debug,
	})
	log.Logger = logger

	logger.Info().
		Str("storage", cfg.Storage).
		Str("data_dir", cfg.DataDir).
		Str("listen_addr", cfg.ListenAddr).
		Msg("Configuration loaded")
	if cfg.JWTSecret == "change-me" {
		logger.Warn().Msg("CHEATSHEETS_JWT_SECRET is the default; set it before exposing the server")
	}

	if cfg.Storage == storage.KindFile || cfg.Storage == storage.KindSQLite {
		if err := cfg.EnsureDataDir(); err != nil {
			logger.Fatal().Err(err).Msg("Failed to create data directory")
		}
	}

	// Initialize components
	backend, err := storage.Open(context.Background(), storage.BackendSpec{
		Kind:        cfg.Storage,
		DataDir:     cfg.DataDir,
		SQLitePath:  cfg.SQLitePath,
		RedisURL:    cfg.RedisURL,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open storage")
	}
	store := storage.NewStore(backend, storage.WithLogger(logger))
	jwt := auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL)

	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:        handlers.NewAuthHandlers(auth.NewDirectory(store), jwt, logger),
		API:         handlers.NewAPIHandlers(handlers.NewCatalogs(store, logger), logger),
		Verifier:    jwt,
		CORSOrigins: cfg.CORSOrigins,
		RequestLog:  cfg.Debug,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("Server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Server failed")
		}
	case <-ctx.Done():
		logger.Info().Msg("Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Error shutting down server")
		}
		cancel()
	}

	if err := store.Close(); err != nil {
		logger.Error().Err(err).Msg("Error closing store")
	}
}
