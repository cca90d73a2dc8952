package catalog

import (
	"context"
	"errors"
	"time"

	"feedgen/internal/models"
)

// ErrStoreUnavailable is returned when the commerce store cannot serve catalog data.
var ErrStoreUnavailable = errors.New("commerce store is not active")

// ProductQuery narrows a product listing. Zero values do not filter.
type ProductQuery struct {
	Status             string
	StockStatus        models.StockStatus
	ExcludedCategories []int64
}

// FeedQuery returns the query used for product feeds and CSV exports:
// published, in stock, and outside the excluded categories.
func FeedQuery(excluded []int64) ProductQuery {
	return ProductQuery{
		Status:             models.ProductStatusPublish,
		StockStatus:        models.StockStatusInStock,
		ExcludedCategories: excluded,
	}
}

// Source supplies catalog data to the feed builders.
type Source interface {
	Ping(ctx context.Context) error
	Products(ctx context.Context, q ProductQuery) ([]models.Product, error)
	Reviews(ctx context.Context, productIDs []int64) (map[int64][]models.Review, error)
	RecentOrders(ctx context.Context, since time.Time, statuses []string) ([]models.Order, error)
}

// PaidStatuses are the order statuses counted toward popularity.
var PaidStatuses = []string{models.OrderStatusCompleted, models.OrderStatusProcessing}
