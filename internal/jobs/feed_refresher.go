package jobs

import (
	"context"
	"time"

	"feedgen/internal/logger"
)

// FeedRegenerator rebuilds and caches the XML feeds.
type FeedRegenerator interface {
	RegenerateProductFeed(ctx context.Context) (string, error)
	RegenerateReviewsFeed(ctx context.Context) (string, error)
}

// FeedRefresher regenerates the product and reviews feeds on fixed intervals.
type FeedRefresher struct {
	feeds           FeedRegenerator
	logger          *logger.Logger
	productInterval time.Duration
	reviewsInterval time.Duration
}

func NewFeedRefresher(feeds FeedRegenerator, productInterval, reviewsInterval time.Duration, logger *logger.Logger) *FeedRefresher {
	return &FeedRefresher{
		feeds:           feeds,
		logger:          logger,
		productInterval: productInterval,
		reviewsInterval: reviewsInterval,
	}
}

// Run builds both feeds immediately, then on their intervals until ctx is
// cancelled. A non-positive interval disables that schedule.
func (r *FeedRefresher) Run(ctx context.Context) error {
	r.logger.Info("Starting feed refresher (product every %s, reviews every %s)", r.productInterval, r.reviewsInterval)

	// Run immediately on start
	r.refreshProducts(ctx)
	r.refreshReviews(ctx)

	productTick := tick(r.productInterval)
	reviewsTick := tick(r.reviewsInterval)
	defer productTick.stop()
	defer reviewsTick.stop()

	for {
		select {
		case <-productTick.c:
			r.refreshProducts(ctx)
		case <-reviewsTick.c:
			r.refreshReviews(ctx)
		case <-ctx.Done():
			r.logger.Info("Feed refresher stopped")
			return nil
		}
	}
}

func (r *FeedRefresher) refreshProducts(ctx context.Context) {
	start := time.Now()
	if _, err := r.feeds.RegenerateProductFeed(ctx); err != nil {
		r.logger.Error("Scheduled product feed regeneration failed: %v", err)
		return
	}
	r.logger.Info("Scheduled product feed regenerated in %s", time.Since(start))
}

func (r *FeedRefresher) refreshReviews(ctx context.Context) {
	start := time.Now()
	if _, err := r.feeds.RegenerateReviewsFeed(ctx); err != nil {
		r.logger.Error("Scheduled reviews feed regeneration failed: %v", err)
		return
	}
	r.logger.Info("Scheduled reviews feed regenerated in %s", time.Since(start))
}

type ticker struct {
	c    <-chan time.Time
	stop func()
}

// tick returns a never-firing ticker for non-positive intervals.
func tick(interval time.Duration) ticker {
	if interval <= 0 {
		return ticker{stop: func() {}}
	}
	t := time.NewTicker(interval)
	return ticker{c: t.C, stop: t.Stop}
}
