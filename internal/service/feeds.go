package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"feedgen/internal/cache"
	"feedgen/internal/catalog"
	"feedgen/internal/config"
	"feedgen/internal/events"
	"feedgen/internal/feed"
	"feedgen/internal/labels"
	"feedgen/internal/logger"
	"feedgen/internal/metrics"
	"feedgen/internal/models"

	"golang.org/x/sync/singleflight"
)

const (
	KindProduct = "product"
	KindReviews = "reviews"
	KindCSV     = "csv"

	productKeySuffix = "_google_feed"
	reviewsKeySuffix = "_google_reviews_feed"
)

// Dependencies wires a FeedService.
type Dependencies struct {
	Source      catalog.Source
	Settings    config.SettingsSource
	Cache       cache.Store
	Mirror      *cache.FileMirror
	Products    *feed.ProductFeedBuilder
	Reviews     *feed.ReviewFeedBuilder
	CSV         *feed.CSVExporter
	Logger      *logger.Logger
	CachePrefix string
	Now         func() time.Time
}

// FeedService serves cached feeds and rebuilds them on demand or on catalog changes.
type FeedService struct {
	source   catalog.Source
	settings config.SettingsSource
	cache    cache.Store
	mirror   *cache.FileMirror
	products *feed.ProductFeedBuilder
	reviews  *feed.ReviewFeedBuilder
	csv      *feed.CSVExporter
	logger   *logger.Logger
	now      func() time.Time

	productKey string
	reviewsKey string
	group      singleflight.Group

	// generations counts invalidations per key; a build only stores its
	// result when no invalidation happened while it ran.
	mu          sync.Mutex
	generations map[string]uint64
}

func NewFeedService(deps Dependencies) *FeedService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &FeedService{
		source:      deps.Source,
		settings:    deps.Settings,
		cache:       deps.Cache,
		mirror:      deps.Mirror,
		products:    deps.Products,
		reviews:     deps.Reviews,
		csv:         deps.CSV,
		logger:      log,
		now:         now,
		productKey:  deps.CachePrefix + productKeySuffix,
		reviewsKey:  deps.CachePrefix + reviewsKeySuffix,
		generations: make(map[string]uint64),
	}
}

func (s *FeedService) ProductKey() string { return s.productKey }

func (s *FeedService) ReviewsKey() string { return s.reviewsKey }

// ProductFeed returns the cached product feed, building it on a miss or when
// clear_cache is set.
func (s *FeedService) ProductFeed(ctx context.Context) (string, error) {
	return s.cachedOrBuild(ctx, KindProduct, s.productKey, s.RegenerateProductFeed)
}

// ReviewsFeed returns the cached reviews feed, building it on a miss or when
// clear_cache is set.
func (s *FeedService) ReviewsFeed(ctx context.Context) (string, error) {
	return s.cachedOrBuild(ctx, KindReviews, s.reviewsKey, s.RegenerateReviewsFeed)
}

func (s *FeedService) cachedOrBuild(ctx context.Context, kind, key string, build func(context.Context) (string, error)) (string, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}

	if !settings.ClearCache {
		content, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Error("Cache read for %s failed: %v", key, err)
		}
		metrics.RecordCacheLookup(kind, ok)
		if ok {
			return content, nil
		}
	}
	return build(ctx)
}

// RegenerateProductFeed builds the product feed, stores it in the cache and
// writes the on-disk snapshot. Concurrent calls share one build; a build
// overtaken by an invalidation is returned to its callers but not stored.
func (s *FeedService) RegenerateProductFeed(ctx context.Context) (string, error) {
	return s.coalesce(ctx, KindProduct, s.productKey, func(ctx context.Context, settings config.Settings) (string, error) {
		in, err := s.productInput(ctx, settings)
		if err != nil {
			return "", err
		}

		var buf bytes.Buffer
		if err := s.products.Build(&buf, in); err != nil {
			return "", err
		}
		return buf.String(), nil
	})
}

// RegenerateReviewsFeed builds the reviews feed and stores it in the cache.
func (s *FeedService) RegenerateReviewsFeed(ctx context.Context) (string, error) {
	return s.coalesce(ctx, KindReviews, s.reviewsKey, func(ctx context.Context, settings config.Settings) (string, error) {
		products, err := s.source.Products(ctx, catalog.ProductQuery{Status: models.ProductStatusPublish})
		if err != nil {
			return "", fmt.Errorf("failed to list products: %w", err)
		}

		ids := make([]int64, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		reviews, err := s.source.Reviews(ctx, ids)
		if err != nil {
			return "", fmt.Errorf("failed to list reviews: %w", err)
		}

		var buf bytes.Buffer
		if err := s.reviews.Build(&buf, products, reviews); err != nil {
			return "", err
		}
		return buf.String(), nil
	})
}

func (s *FeedService) coalesce(ctx context.Context, kind, key string, build func(context.Context, config.Settings) (string, error)) (string, error) {
	// The shared build outlives any single caller's cancellation.
	buildCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		content, err := s.build(buildCtx, key, build)
		metrics.RecordFeedBuild(kind, err, time.Since(start))
		return content, err
	})
	if shared {
		s.logger.Debug("Joined in-flight %s feed build", kind)
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *FeedService) build(ctx context.Context, key string, build func(context.Context, config.Settings) (string, error)) (string, error) {
	generation := s.generation(key)

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	if err := s.source.Ping(ctx); err != nil {
		return "", err
	}

	content, err := build(ctx, settings)
	if err != nil {
		return "", err
	}

	s.store(ctx, key, generation, content, settings.CacheDuration)
	return content, nil
}

func (s *FeedService) generation(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[key]
}

// store caches content, and snapshots the product feed, unless key was
// invalidated after the build read its generation.
func (s *FeedService) store(ctx context.Context, key string, generation uint64, content string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[key] != generation {
		s.logger.Info("Discarded stale build of %s", key)
		return
	}
	if err := s.cache.Put(ctx, key, content, ttl); err != nil {
		s.logger.Error("Failed to cache %s: %v", key, err)
	}
	if key == s.productKey {
		if err := s.mirror.Write([]byte(content)); err != nil {
			s.logger.Error("Failed to write feed snapshot: %v", err)
		}
	}
	s.logger.Info("Generated %s (%d bytes)", key, len(content))
}

// invalidate drops key from the cache and detaches any in-flight build so
// later callers start a fresh one.
func (s *FeedService) invalidate(ctx context.Context, key string) error {
	s.mu.Lock()
	s.generations[key]++
	s.mu.Unlock()

	s.group.Forget(key)
	return s.cache.Invalidate(ctx, key)
}

// ExportCSV writes the CSV export. It is never cached.
func (s *FeedService) ExportCSV(ctx context.Context, w io.Writer) error {
	start := time.Now()
	err := s.exportCSV(ctx, w)
	metrics.RecordFeedBuild(KindCSV, err, time.Since(start))
	return err
}

func (s *FeedService) exportCSV(ctx context.Context, w io.Writer) error {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := s.source.Ping(ctx); err != nil {
		return err
	}
	in, err := s.productInput(ctx, settings)
	if err != nil {
		return err
	}
	return s.csv.Export(w, in)
}

func (s *FeedService) productInput(ctx context.Context, settings config.Settings) (feed.Input, error) {
	now := s.now()

	products, err := s.source.Products(ctx, catalog.FeedQuery(settings.ExcludedCategories))
	if err != nil {
		return feed.Input{}, fmt.Errorf("failed to list products: %w", err)
	}

	var orders []models.Order
	if labels.NeedsOrders(settings.Labels) {
		since := now.Add(-time.Duration(settings.Labels.MostOrderedDays) * 24 * time.Hour)
		orders, err = s.source.RecentOrders(ctx, since, catalog.PaidStatuses)
		if err != nil {
			return feed.Input{}, fmt.Errorf("failed to list recent orders: %w", err)
		}
	}

	return feed.Input{
		Products: products,
		Settings: settings,
		Labels:   labels.New(settings.Labels, now, orders),
		Now:      now,
	}, nil
}

// InvalidateProductFeed drops the cached product feed.
func (s *FeedService) InvalidateProductFeed(ctx context.Context) error {
	return s.invalidate(ctx, s.productKey)
}

// InvalidateReviewsFeed drops the cached reviews feed.
func (s *FeedService) InvalidateReviewsFeed(ctx context.Context) error {
	return s.invalidate(ctx, s.reviewsKey)
}

// Deactivate removes every cached feed and the on-disk snapshot.
func (s *FeedService) Deactivate(ctx context.Context) error {
	return errors.Join(
		s.InvalidateProductFeed(ctx),
		s.InvalidateReviewsFeed(ctx),
		s.mirror.Remove(),
	)
}

// Register subscribes the service to catalog changes. A product change
// invalidates and eagerly rebuilds the product feed; a comment change only
// invalidates the reviews feed, which is rebuilt on the next read.
func (s *FeedService) Register(bus *events.Bus) {
	bus.OnProductChanged(func(ctx context.Context, e events.ProductChanged) error {
		s.logger.Debug("Product %d changed (%s), refreshing product feed", e.ProductID, e.Type)
		if err := s.InvalidateProductFeed(ctx); err != nil {
			return fmt.Errorf("failed to invalidate product feed: %w", err)
		}
		if _, err := s.RegenerateProductFeed(ctx); err != nil {
			return fmt.Errorf("failed to rebuild product feed: %w", err)
		}
		return nil
	})
	bus.OnCommentChanged(func(ctx context.Context, e events.CommentChanged) error {
		s.logger.Debug("Comment %d on product %d changed (%s), invalidating reviews feed", e.CommentID, e.ProductID, e.Type)
		if err := s.InvalidateReviewsFeed(ctx); err != nil {
			return fmt.Errorf("failed to invalidate reviews feed: %w", err)
		}
		return nil
	})
}
