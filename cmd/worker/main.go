package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"feedgen/internal/app"
	"feedgen/internal/config"
	"feedgen/internal/jobs"
	"feedgen/internal/logger"
	"feedgen/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Kafka consumer, scheduled regeneration and mirror sync share one lifetime
	w := worker.New(cfg, logger, a.Bus)
	refresher := jobs.NewFeedRefresher(a.Feeds, cfg.ProductFeedInterval, cfg.ReviewsFeedInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Start(gctx) })
	g.Go(func() error { return refresher.Run(gctx) })
	if a.Mirror != nil {
		catalogSync := jobs.NewCatalogSync(a.Mirror, cfg.CatalogSyncInterval, logger)
		g.Go(func() error { return catalogSync.Run(gctx) })
	}

	logger.Info("Starting worker...")
	if err := g.Wait(); err != nil {
		logger.Error("Worker exited: %v", err)
	}

	logger.Info("Shutting down worker...")
	if err := w.Stop(); err != nil {
		logger.Error("Failed to close Kafka reader: %v", err)
	}
}
