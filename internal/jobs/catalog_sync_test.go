package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"feedgen/internal/connectors/woocommerce"
	"feedgen/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSyncer struct {
	calls int32
	err   error
}

func (s *countingSyncer) Sync(ctx context.Context) (woocommerce.SyncResult, error) {
	atomic.AddInt32(&s.calls, 1)
	return woocommerce.SyncResult{Products: 1}, s.err
}

func runSync(t *testing.T, j *CatalogSync, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, j.Run(ctx))
}

func TestCatalogSyncRunsOnInterval(t *testing.T) {
	syncer := &countingSyncer{}
	runSync(t, NewCatalogSync(syncer, 20*time.Millisecond, logger.Discard()), 110*time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&syncer.calls), int32(3))
}

func TestCatalogSyncInitialOnly(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("store down")}
	runSync(t, NewCatalogSync(syncer, 0, logger.Discard()), 50*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&syncer.calls))
}
