package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"safisha/internal/analytics"
	"safisha/internal/cache"
	"safisha/internal/cli"
	apphttp "safisha/internal/http"
	applog "safisha/internal/log"
	"safisha/internal/middleware/ratelimit"
	"safisha/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	b := cli.InitBackend(context.Background(), logger, cfg)

	summaries := cache.NewLRUCache[analytics.Summary](256, cfg.SummaryCacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(summaries)
	caches.StartCleanup(time.Minute)

	opts := services.SalesOptions{Summaries: summaries, Logger: logger}
	if b.Mirror != nil {
		opts.Mirror = b.Mirror
	}
	if b.Publisher != nil {
		opts.Publisher = b.Publisher
	}
	sales := services.NewSalesService(b.Gateway.Sales, opts)

	var mirrorSync *services.MirrorSync
	if b.Mirror != nil {
		mirrorSync = services.NewMirrorSync(b.Gateway.Sales, b.Mirror, cfg.SyncBatchSize, logger)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Gateway:     b.Gateway,
		Sales:       sales,
		Sync:        mirrorSync,
		Diagnostics: cfg.Diagnostics(),
		Ready:       b.Ready,
		JWTSecret:   cfg.JWTSecret,
		RateLimit:   ratelimit.DefaultConfig(),
		Logger:      logger,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err.Error())
		}
		sales.Wait()
		caches.Stop()
		if err := b.Close(); err != nil {
			logger.Error("Backend close error", applog.FieldError, err.Error())
		}
	})

	logger.Info("Starting HTTP server",
		"addr", srv.Addr,
		"remote_active", b.Gateway.RemoteActive(),
		"mirror_enabled", b.Mirror != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
