// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/extracto, cmd/extracto-worker and cmd/extracto-render.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"extracto/internal/backend"
	"extracto/internal/canvas/pdf"
	"extracto/internal/config"
	"extracto/internal/log"
	"extracto/internal/statement"
)

// SetupLogger initializes structured logging at the given LOG_LEVEL and sets
// it as the default logger.
func SetupLogger(level string) *log.Logger {
	lvl := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}),
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitBackend builds the transaction source and artifact store.
// Exits the process on failure.
func InitBackend(ctx context.Context, logger *log.Logger, cfg *config.Config) *backend.Result {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err,
			"data_backend", cfg.DataBackend, "artifact_store", cfg.ArtifactStore)
		os.Exit(1)
	}
	return res
}

// NewGenerator returns a PDF statement generator using the configured layout.
func NewGenerator(logger *log.Logger, cfg *config.Config) (*statement.Generator, error) {
	layout, err := statement.LayoutByName(cfg.StatementLayout)
	if err != nil {
		return nil, err
	}
	brand := statement.DefaultBranding()
	factory := pdf.Factory(pdf.Options{Title: brand.BankName + " - Extracto", Author: brand.BankName})
	return statement.NewGenerator(factory,
		statement.WithLayout(layout),
		statement.WithBranding(brand),
		statement.WithLogger(logger.WithComponent(log.ComponentStatement)),
	), nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}
