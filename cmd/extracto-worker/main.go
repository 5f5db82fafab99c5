package main

import (
	"context"
	"errors"
	"os"

	"extracto/internal/amqp"
	"extracto/internal/cli"
	"extracto/internal/config"
	"extracto/internal/log"
	"extracto/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting extracto-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	os.Exit(run(logger, cfg))
}

// run consumes statement requests until a shutdown signal and returns the
// process exit code after releasing the backend and the broker connection.
func run(logger *log.Logger, cfg *config.Config) int {
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		return 1
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	gen, err := cli.NewGenerator(logger, cfg)
	if err != nil {
		logger.Error("Failed to create statement generator", log.FieldError, err)
		return 1
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return 1
	}
	amqpClient.WithLogger(logger)
	defer func() {
		if err := amqpClient.Close(); err != nil {
			logger.Error("AMQP close error", log.FieldError, err)
		}
	}()

	w := worker.NewStatementWorker(res.Source, res.Artifacts, gen, cfg.WorkerConcurrency, logger)

	// Cleanup happens in the defers above once consumption returns.
	ctx, _ := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	logger.Info("Consuming statement requests",
		"queue", cfg.AMQPQueue,
		"concurrency", cfg.WorkerConcurrency,
		"artifact_store", cfg.ArtifactStore)
	if err := amqpClient.ConsumeStatementRequests(ctx, w.HandleRequest); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		return 1
	}

	logger.Info("Worker stopped gracefully")
	return 0
}
