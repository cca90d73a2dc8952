package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"feedgen/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProductNotFound is returned when a product is not in the mirror.
var ErrProductNotFound = errors.New("product not found")

// ListQuery pages through the mirrored products.
type ListQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// Normalize clamps the page to 1 and the limit to 1..100, defaulting to 20.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// SaveProduct upserts a product with its categories and replaces its variations.
func (r *Repository) SaveProduct(ctx context.Context, p *models.Product) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range p.Categories {
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&p.Categories[i]).Error; err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM product_categories WHERE product_id = ?", p.ID).Error; err != nil {
			return err
		}
		if len(p.Categories) > 0 {
			if err := tx.Model(p).Association("Categories").Append(p.Categories); err != nil {
				return err
			}
		}

		if err := tx.Where("product_id = ?", p.ID).Delete(&models.Variation{}).Error; err != nil {
			return err
		}
		for i := range p.Variations {
			p.Variations[i].ProductID = p.ID
		}
		if len(p.Variations) > 0 {
			if err := tx.Create(&p.Variations).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save product %d: %w", p.ID, err)
	}
	return nil
}

// DeleteProduct removes a product with its variations and category links.
// Deleting a missing product is not an error.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Variation{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM product_categories WHERE product_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}

func (r *Repository) SaveReview(ctx context.Context, review *models.Review) error {
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(review).Error; err != nil {
		return fmt.Errorf("failed to save review %d: %w", review.ID, err)
	}
	return nil
}

func (r *Repository) DeleteReview(ctx context.Context, id int64) error {
	if err := r.db.WithContext(ctx).Delete(&models.Review{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete review %d: %w", id, err)
	}
	return nil
}

// SaveOrder upserts an order and replaces its line items.
func (r *Repository) SaveOrder(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{UpdateAll: true}).Create(order).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range order.Items {
			order.Items[i].ID = 0
			order.Items[i].OrderID = order.ID
		}
		if len(order.Items) > 0 {
			return tx.Create(&order.Items).Error
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save order %d: %w", order.ID, err)
	}
	return nil
}

// ListProducts returns one page of mirrored products, newest first, and the
// total number of matches. Search matches name or SKU case-insensitively.
func (r *Repository) ListProducts(ctx context.Context, q ListQuery) ([]models.Product, int64, error) {
	q = q.Normalize()

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	if err := query.Preload("Categories").
		Order("created_at DESC, id DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetProduct loads one product with its categories and variations.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Variations", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &product, nil
}
