package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"feedgen/internal/config"
	"feedgen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := New("sqlite://" + filepath.Join(t.TempDir(), "feedgen.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewCreatesTables(t *testing.T) {
	db := newTestDB(t)

	for _, table := range []string{"products", "variations", "categories", "product_categories", "reviews", "orders", "order_items", "transients", "options"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
}

func TestOptionsStoreOverlaysDefaults(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.DB.Create(&models.Option{Name: config.OptionLabel0OlderThanDays, Value: "45"}).Error)
	require.NoError(t, db.DB.Create(&models.Option{Name: config.OptionCacheDuration, Value: "2"}).Error)

	store := NewOptionsStore(db.DB, map[string]string{
		config.OptionLabel0OlderThanDays:  "30",
		config.OptionLabel0OlderThanValue: "old",
	})

	settings, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, settings.Labels.OlderThanDays)
	assert.Equal(t, "old", settings.Labels.OlderThanValue)
	assert.Equal(t, 2*time.Hour, settings.CacheDuration)
}
