package woocommerce

import (
	"context"
	"fmt"
	"time"

	"feedgen/internal/catalog"
	"feedgen/internal/events"
	"feedgen/internal/logger"
	"feedgen/internal/models"
)

// CatalogWriter persists store data into the local catalog mirror.
type CatalogWriter interface {
	SaveProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	SaveReview(ctx context.Context, r *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
	SaveOrder(ctx context.Context, o *models.Order) error
}

var _ CatalogWriter = (*catalog.Repository)(nil)

// SyncResult counts the records written by a full sync.
type SyncResult struct {
	Products int `json:"products"`
	Reviews  int `json:"reviews"`
	Orders   int `json:"orders"`
}

// Mirror keeps the database catalog in step with the live store. Full syncs
// copy everything; bus events refresh single products and reviews.
type Mirror struct {
	connector    *WooCommerceConnector
	writer       CatalogWriter
	bus          *events.Bus
	ordersWindow time.Duration
	logger       *logger.Logger
	now          func() time.Time
}

func NewMirror(connector *WooCommerceConnector, writer CatalogWriter, bus *events.Bus, ordersWindow time.Duration, logger *logger.Logger) *Mirror {
	return &Mirror{
		connector:    connector,
		writer:       writer,
		bus:          bus,
		ordersWindow: ordersWindow,
		logger:       logger,
		now:          time.Now,
	}
}

// Sync copies every product, review and the orders inside the orders window
// into the mirror, then announces a catalog-wide change (zero ids) so the
// feeds are refreshed.
func (m *Mirror) Sync(ctx context.Context) (SyncResult, error) {
	var result SyncResult
	m.logger.Info("Syncing catalog from WooCommerce")

	if err := m.connector.Ping(ctx); err != nil {
		return result, err
	}

	products, err := m.connector.Products(ctx, catalog.ProductQuery{})
	if err != nil {
		return result, err
	}
	ids := make([]int64, 0, len(products))
	for i := range products {
		if err := m.writer.SaveProduct(ctx, &products[i]); err != nil {
			return result, err
		}
		ids = append(ids, products[i].ID)
		result.Products++
	}

	reviews, err := m.connector.Reviews(ctx, ids)
	if err != nil {
		return result, err
	}
	for _, byProduct := range reviews {
		for i := range byProduct {
			if err := m.writer.SaveReview(ctx, &byProduct[i]); err != nil {
				return result, err
			}
			result.Reviews++
		}
	}

	if m.ordersWindow > 0 {
		orders, err := m.connector.RecentOrders(ctx, m.now().Add(-m.ordersWindow), nil)
		if err != nil {
			return result, err
		}
		for i := range orders {
			if err := m.writer.SaveOrder(ctx, &orders[i]); err != nil {
				return result, err
			}
			result.Orders++
		}
	}

	m.logger.Info("Catalog sync completed: %d products, %d reviews, %d orders", result.Products, result.Reviews, result.Orders)

	if m.bus != nil {
		err = m.bus.PublishProductChanged(ctx, events.ProductChanged{Type: events.ProductUpdated})
		if cerr := m.bus.PublishCommentChanged(ctx, events.CommentChanged{Type: events.CommentUpdated}); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return result, fmt.Errorf("catalog synced but feed refresh failed: %w", err)
		}
	}
	return result, nil
}

// SyncProduct refreshes one product. A product the store no longer has is
// removed from the mirror.
func (m *Mirror) SyncProduct(ctx context.Context, id int64) error {
	raw, err := m.connector.client.GetProduct(ctx, id)
	if IsNotFound(err) {
		return m.writer.DeleteProduct(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch product %d: %w", id, err)
	}

	var variations []Variation
	if models.ProductType(raw.Type) == models.ProductTypeVariable {
		variations, err = m.connector.client.GetVariations(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to fetch variations of product %d: %w", id, err)
		}
	}
	product := m.connector.transformer.TransformProduct(raw, variations)
	return m.writer.SaveProduct(ctx, &product)
}

// SyncReview refreshes one review, removing it when the store no longer has it.
func (m *Mirror) SyncReview(ctx context.Context, id int64) error {
	raw, err := m.connector.client.GetReview(ctx, id)
	if IsNotFound(err) {
		return m.writer.DeleteReview(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch review %d: %w", id, err)
	}
	review := m.connector.transformer.TransformReview(raw)
	return m.writer.SaveReview(ctx, &review)
}

// Register subscribes the mirror to catalog changes. It must be registered
// before the feed service so rebuilt feeds read the refreshed rows. Events
// with a zero id are catalog-wide notices and are ignored.
func (m *Mirror) Register(bus *events.Bus) {
	bus.OnProductChanged(func(ctx context.Context, e events.ProductChanged) error {
		if e.ProductID == 0 {
			return nil
		}
		if e.Type == events.ProductDeleted {
			return m.writer.DeleteProduct(ctx, e.ProductID)
		}
		return m.SyncProduct(ctx, e.ProductID)
	})
	bus.OnCommentChanged(func(ctx context.Context, e events.CommentChanged) error {
		if e.CommentID == 0 {
			return nil
		}
		if e.Type == events.CommentDeleted {
			return m.writer.DeleteReview(ctx, e.CommentID)
		}
		return m.SyncReview(ctx, e.CommentID)
	})
}
