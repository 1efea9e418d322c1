package main

import (
	"context"
	"errors"
	"os"
	"time"

	"safisha/internal/cli"
	applog "safisha/internal/log"
	"safisha/internal/services"
	"safisha/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting safisha-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	b := cli.InitBackend(context.Background(), logger, cfg)

	if b.Mirror == nil {
		logger.Error("No spreadsheet mirror configured, nothing to do",
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		_ = b.Close()
		os.Exit(1)
	}

	// Periodic pass catches sales whose mirror message was lost.
	processor := services.NewSyncProcessor(
		services.NewMirrorSync(b.Gateway.Sales, b.Mirror, cfg.SyncBatchSize, logger),
		services.SyncProcessorConfig{Interval: cfg.SyncInterval, RunOnStart: true},
	)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := processor.Stop(ctx); err != nil {
			logger.Warn("Sync processor stop error", applog.FieldError, err.Error())
		}
		if err := b.Close(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err.Error())
		}
	})

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start sync processor", applog.FieldError, err.Error())
		os.Exit(1)
	}

	if b.Publisher != nil {
		mirrorWorker := worker.NewMirrorWorker(b.Mirror)
		go func() {
			err := b.Publisher.ConsumeEntryMirror(ctx, mirrorWorker.HandleEntryMirror)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", applog.FieldError, err.Error())
			}
		}()
	} else {
		logger.Info("AMQP disabled, relying on periodic sync only",
			"interval", cfg.SyncInterval)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("safisha-worker stopped")
}
