package woocommerce

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"feedgen/internal/events"
	"feedgen/internal/logger"
	"feedgen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryWriter struct {
	products map[int64]models.Product
	reviews  map[int64]models.Review
	orders   map[int64]models.Order
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{
		products: make(map[int64]models.Product),
		reviews:  make(map[int64]models.Review),
		orders:   make(map[int64]models.Order),
	}
}

func (w *memoryWriter) SaveProduct(_ context.Context, p *models.Product) error {
	w.products[p.ID] = *p
	return nil
}

func (w *memoryWriter) DeleteProduct(_ context.Context, id int64) error {
	delete(w.products, id)
	return nil
}

func (w *memoryWriter) SaveReview(_ context.Context, r *models.Review) error {
	w.reviews[r.ID] = *r
	return nil
}

func (w *memoryWriter) DeleteReview(_ context.Context, id int64) error {
	delete(w.reviews, id)
	return nil
}

func (w *memoryWriter) SaveOrder(_ context.Context, o *models.Order) error {
	w.orders[o.ID] = *o
	return nil
}

func TestMirrorSync(t *testing.T) {
	srv, requests := newTestServer(t)
	writer := newMemoryWriter()
	bus := events.NewBus()

	var productNotices, commentNotices int
	bus.OnProductChanged(func(_ context.Context, e events.ProductChanged) error {
		assert.Zero(t, e.ProductID)
		productNotices++
		return nil
	})
	bus.OnCommentChanged(func(_ context.Context, e events.CommentChanged) error {
		assert.Zero(t, e.CommentID)
		commentNotices++
		return nil
	})

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mirror := NewMirror(newConnector(srv.URL), writer, bus, 30*24*time.Hour, logger.Discard())
	mirror.now = func() time.Time { return now }

	result, err := mirror.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Products: 3, Reviews: 3, Orders: 1}, result)

	require.Contains(t, writer.products, int64(10))
	assert.Len(t, writer.products[10].Variations, 2)
	assert.Contains(t, writer.products, int64(12))
	assert.Equal(t, models.ReviewApproved, writer.reviews[1].Approved)
	assert.Equal(t, 2, writer.orders[500].Items[0].Quantity)

	assert.Equal(t, 1, productNotices)
	assert.Equal(t, 1, commentNotices)

	for _, r := range *requests {
		if r.path == "/wp-json/wc/v3/orders" {
			assert.Contains(t, r.query, "after=2024-05-02T00%3A00%3A00Z")
			assert.NotContains(t, r.query, "status=")
		}
	}
}

func TestMirrorSyncStoreDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	writer := newMemoryWriter()
	mirror := NewMirror(newConnector(srv.URL), writer, nil, 0, logger.Discard())

	_, err := mirror.Sync(context.Background())
	require.Error(t, err)
	assert.Empty(t, writer.products)
}

func newSingleResourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wc/v3/products/11", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 11, "name": "Cap", "type": "simple", "status": "publish", "sku": "CAP", "regular_price": "15.00"}`)
	})
	mux.HandleFunc("/wp-json/wc/v3/products/10", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 10, "name": "Tee", "type": "variable", "status": "publish", "sku": "TEE"}`)
	})
	mux.HandleFunc("/wp-json/wc/v3/products/10/variations", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, variations)
	})
	mux.HandleFunc("/wp-json/wc/v3/products/reviews/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": 7, "product_id": 11, "status": "approved", "reviewer": "Ann", "review": "Nice", "rating": 4}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMirrorSyncProduct(t *testing.T) {
	srv := newSingleResourceServer(t)
	writer := newMemoryWriter()
	writer.products[99] = models.Product{ID: 99, Name: "Stale"}
	mirror := NewMirror(newConnector(srv.URL), writer, nil, 0, logger.Discard())
	ctx := context.Background()

	require.NoError(t, mirror.SyncProduct(ctx, 11))
	assert.Equal(t, "15", writer.products[11].RegularPrice.String())

	require.NoError(t, mirror.SyncProduct(ctx, 10))
	assert.Len(t, writer.products[10].Variations, 2)

	require.NoError(t, mirror.SyncProduct(ctx, 99))
	assert.NotContains(t, writer.products, int64(99))
}

func TestMirrorRegister(t *testing.T) {
	srv := newSingleResourceServer(t)
	writer := newMemoryWriter()
	writer.products[12] = models.Product{ID: 12}
	writer.reviews[8] = models.Review{ID: 8}

	bus := events.NewBus()
	mirror := NewMirror(newConnector(srv.URL), writer, bus, 0, logger.Discard())
	mirror.Register(bus)
	ctx := context.Background()

	require.NoError(t, bus.PublishProductChanged(ctx, events.ProductChanged{Type: events.ProductUpdated, ProductID: 11}))
	require.NoError(t, bus.PublishProductChanged(ctx, events.ProductChanged{Type: events.ProductDeleted, ProductID: 12}))
	require.NoError(t, bus.PublishProductChanged(ctx, events.ProductChanged{Type: events.ProductUpdated}))
	require.NoError(t, bus.PublishCommentChanged(ctx, events.CommentChanged{Type: events.CommentCreated, CommentID: 7, ProductID: 11}))
	require.NoError(t, bus.PublishCommentChanged(ctx, events.CommentChanged{Type: events.CommentDeleted, CommentID: 8}))

	assert.Contains(t, writer.products, int64(11))
	assert.NotContains(t, writer.products, int64(12))
	assert.Equal(t, models.ReviewApproved, writer.reviews[7].Approved)
	assert.NotContains(t, writer.reviews, int64(8))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", &StatusError{StatusCode: http.StatusNotFound})))
	assert.False(t, IsNotFound(&StatusError{StatusCode: http.StatusInternalServerError}))
	assert.False(t, IsNotFound(nil))
}
