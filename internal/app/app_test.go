package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"feedgen/internal/cache"
	"feedgen/internal/catalog"
	"feedgen/internal/config"
	"feedgen/internal/connectors/woocommerce"
	"feedgen/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseURL:   "sqlite://" + filepath.Join(t.TempDir(), "app.db"),
		CatalogSource: SourceDatabase,
		CacheBackend:  CacheDatabase,
		CachePrefix:   "feedgen",
		SiteName:      "Shop",
		SiteURL:       "https://shop.test",
		Currency:      "USD",
	}
}

func TestNewWiresDatabaseStack(t *testing.T) {
	a, err := New(testConfig(t), logger.Discard())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &catalog.Repository{}, a.Source)
	assert.IsType(t, &cache.DatabaseStore{}, a.Cache)
	assert.Nil(t, a.Mirror)

	content, err := a.Feeds.ProductFeed(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.Contains(content, "<feed"))

	_, ok, err := a.Cache.Get(context.Background(), "feedgen_google_feed")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewWooCommerceSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogSource = SourceWooCommerce
	cfg.CacheBackend = CacheMemory
	cfg.WCStoreURL = "https://shop.test"

	a, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &woocommerce.WooCommerceConnector{}, a.Source)
	assert.IsType(t, &cache.MemoryStore{}, a.Cache)
	assert.Nil(t, a.Mirror)
}

func TestNewDatabaseSourceWithStoreMirror(t *testing.T) {
	cfg := testConfig(t)
	cfg.WCStoreURL = "https://shop.test"

	a, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &catalog.Repository{}, a.Source)
	assert.NotNil(t, a.Mirror)
	assert.Same(t, a.Catalog, a.Source)
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogSource = "magento"
	_, err := New(cfg, logger.Discard())
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.CacheBackend = "redis"
	_, err = New(cfg, logger.Discard())
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.CatalogSource = SourceWooCommerce
	_, err = New(cfg, logger.Discard())
	assert.Error(t, err)
}
