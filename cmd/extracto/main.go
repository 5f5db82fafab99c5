package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"extracto/internal/amqp"
	"extracto/internal/cli"
	"extracto/internal/config"
	apphttp "extracto/internal/http"
	"extracto/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)
	os.Exit(run(logger, cfg))
}

// run serves until a shutdown signal and returns the process exit code after
// releasing the backend and the broker connection.
func run(logger *log.Logger, cfg *config.Config) int {
	res := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	gen, err := cli.NewGenerator(logger, cfg)
	if err != nil {
		logger.Error("Failed to create statement generator", log.FieldError, err, log.FieldLayout, cfg.StatementLayout)
		return 1
	}

	checks := make(map[string]apphttp.Check, len(res.Checks)+1)
	for name, check := range res.Checks {
		checks[name] = apphttp.Check(check)
	}

	// The queue is optional: without it the server still renders statements
	// synchronously and only the jobs endpoint is disabled.
	var (
		publisher  apphttp.Publisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, statement jobs disabled", log.FieldError, err)
		} else {
			amqpClient.WithLogger(logger)
			publisher = amqpClient
			checks["amqp"] = amqpClient.Ping
			defer func() {
				if err := amqpClient.Close(); err != nil {
					logger.Error("AMQP close error", log.FieldError, err)
				}
			}()
		}
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, res.Source, gen, apphttp.Options{
		Publisher:          publisher,
		Checks:             checks,
		Logger:             logger,
		CacheSize:          cfg.CacheSize,
		CacheMaxBytes:      cfg.CacheMaxBytes,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", log.FieldError, err)
		return 1
	}
	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	// The broker and the backend are released by the defers above once
	// ListenAndServe returns.
	_, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting extracto server",
		"port", cfg.Port,
		"data_backend", cfg.DataBackend,
		"artifact_store", cfg.ArtifactStore,
		log.FieldLayout, gen.Layout().Name,
		"jobs_enabled", publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		_ = srv.Shutdown(context.Background())
		return 1
	}

	<-done
	logger.Info("Server stopped gracefully")
	return 0
}
