// Package app assembles the services shared by the api and worker binaries.
package app

import (
	"fmt"

	"feedgen/internal/cache"
	"feedgen/internal/catalog"
	"feedgen/internal/config"
	"feedgen/internal/connectors/woocommerce"
	"feedgen/internal/database"
	"feedgen/internal/events"
	"feedgen/internal/feed"
	"feedgen/internal/logger"
	"feedgen/internal/service"
	"feedgen/internal/taxonomy"
)

const (
	SourceDatabase    = "database"
	SourceWooCommerce = "woocommerce"

	CacheDatabase = "database"
	CacheMemory   = "memory"
)

type App struct {
	DB         *database.Database
	Source     catalog.Source
	Catalog    *catalog.Repository
	Mirror     *woocommerce.Mirror
	Cache      cache.Store
	Bus        *events.Bus
	Feeds      *service.FeedService
	Categories *taxonomy.Client
}

// New opens the database and wires the catalog source, cache, event bus and
// feed service. Feed changes on the bus are already subscribed. With the
// database source and a store URL, the WooCommerce mirror is subscribed
// ahead of the feeds.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	repo := catalog.NewRepository(db.DB)
	bus := events.NewBus()

	var (
		source catalog.Source
		mirror *woocommerce.Mirror
	)
	switch cfg.CatalogSource {
	case SourceDatabase:
		source = repo
		if cfg.WCStoreURL != "" {
			mirror = woocommerce.NewMirror(woocommerce.New(cfg, log), repo, bus, cfg.SyncOrdersWindow, log)
			mirror.Register(bus)
		}
	case SourceWooCommerce:
		if cfg.WCStoreURL == "" {
			db.Close()
			return nil, fmt.Errorf("WC_STORE_URL is required for catalog source %q", cfg.CatalogSource)
		}
		source = woocommerce.New(cfg, log)
	default:
		db.Close()
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}

	var store cache.Store
	switch cfg.CacheBackend {
	case CacheDatabase:
		store = cache.NewDatabaseStore(db.DB)
	case CacheMemory:
		store = cache.NewMemoryStore()
	default:
		db.Close()
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}

	feeds := service.NewFeedService(service.Dependencies{
		Source:      source,
		Settings:    database.NewOptionsStore(db.DB, config.EnvOptions()),
		Cache:       store,
		Mirror:      cache.NewFileMirror(cfg.FeedFilePath),
		Products:    feed.NewProductFeedBuilder(cfg.SiteName, cfg.SiteURL, cfg.SiteDescription, cfg.Currency),
		Reviews:     feed.NewReviewFeedBuilder(),
		CSV:         feed.NewCSVExporter(cfg.SiteName, cfg.Currency),
		Logger:      log,
		CachePrefix: cfg.CachePrefix,
	})

	feeds.Register(bus)

	return &App{
		DB:         db,
		Source:     source,
		Catalog:    repo,
		Mirror:     mirror,
		Cache:      store,
		Bus:        bus,
		Feeds:      feeds,
		Categories: taxonomy.NewClient(cfg.TaxonomyURL, store, cfg.CachePrefix, log),
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}
