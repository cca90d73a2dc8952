package jobs

import (
	"context"
	"time"

	"feedgen/internal/connectors/woocommerce"
	"feedgen/internal/logger"
)

// CatalogSyncer copies the live store into the database mirror.
type CatalogSyncer interface {
	Sync(ctx context.Context) (woocommerce.SyncResult, error)
}

// CatalogSync runs full mirror syncs on a fixed interval.
type CatalogSync struct {
	syncer   CatalogSyncer
	interval time.Duration
	logger   *logger.Logger
}

func NewCatalogSync(syncer CatalogSyncer, interval time.Duration, logger *logger.Logger) *CatalogSync {
	return &CatalogSync{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
	}
}

// Run syncs immediately, then every interval until ctx is cancelled. A
// non-positive interval runs the initial sync only.
func (j *CatalogSync) Run(ctx context.Context) error {
	j.sync(ctx)

	t := tick(j.interval)
	defer t.stop()

	for {
		select {
		case <-t.c:
			j.sync(ctx)
		case <-ctx.Done():
			j.logger.Info("Catalog sync stopped")
			return nil
		}
	}
}

func (j *CatalogSync) sync(ctx context.Context) {
	start := time.Now()
	result, err := j.syncer.Sync(ctx)
	if err != nil {
		j.logger.Error("Scheduled catalog sync failed: %v", err)
		return
	}
	j.logger.Info("Scheduled catalog sync wrote %d products in %s", result.Products, time.Since(start))
}
