package catalog

import (
	"context"
	"fmt"
	"time"

	"feedgen/internal/models"

	"gorm.io/gorm"
)

// Repository reads the catalog from a database mirror of the store tables.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Repository) Products(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	var products []models.Product

	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Preload("Categories").
		Preload("Variations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		})

	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.StockStatus != "" {
		query = query.Where("stock_status = ?", q.StockStatus)
	}
	if len(q.ExcludedCategories) > 0 {
		excluded := r.db.Table("product_categories").
			Select("product_id").
			Where("category_id IN ?", q.ExcludedCategories)
		query = query.Where("id NOT IN (?)", excluded)
	}

	if err := query.Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (r *Repository) Reviews(ctx context.Context, productIDs []int64) (map[int64][]models.Review, error) {
	byProduct := make(map[int64][]models.Review)
	if len(productIDs) == 0 {
		return byProduct, nil
	}

	var reviews []models.Review
	if err := r.db.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("created_at ASC, id ASC").
		Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	for _, review := range reviews {
		byProduct[review.ProductID] = append(byProduct[review.ProductID], review)
	}
	return byProduct, nil
}

func (r *Repository) RecentOrders(ctx context.Context, since time.Time, statuses []string) ([]models.Order, error) {
	var orders []models.Order

	query := r.db.WithContext(ctx).Preload("Items").Where("created_at >= ?", since)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}
