package woocommerce

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"feedgen/internal/catalog"
	"feedgen/internal/events"
	"feedgen/internal/logger"
	"feedgen/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsPage1 = `[
  {
    "id": 10, "name": "Tee", "type": "variable", "status": "publish", "sku": "TEE",
    "permalink": "https://shop.test/product/tee/", "short_description": "<p>Soft</p>",
    "regular_price": "", "sale_price": "", "stock_status": "instock", "average_rating": "4.50",
    "categories": [{"id": 3, "name": "Tops", "slug": "tops"}],
    "tags": [{"id": 1, "name": "Bundle", "slug": "bundle"}],
    "images": [{"id": 1, "src": "https://shop.test/tee.png"}, {"id": 2, "src": "https://shop.test/tee-2.png"}],
    "meta_data": [{"id": 1, "key": "_meta_description", "value": "Meta text"}, {"id": 2, "key": "_complex", "value": {"a": 1}}],
    "date_created_gmt": "2024-05-01T10:00:00", "date_modified_gmt": "2024-05-02T10:00:00",
    "date_on_sale_from_gmt": null, "date_on_sale_to_gmt": null
  }
]`

const productsPage2 = `[
  {
    "id": 11, "name": "Cap", "type": "simple", "status": "publish", "sku": "CAP",
    "regular_price": "15.00", "sale_price": "12.5", "stock_status": "instock",
    "categories": [{"id": 4, "name": "Hats", "slug": "hats"}],
    "date_created_gmt": "2024-04-01T10:00:00",
    "date_on_sale_from_gmt": "2024-04-10T00:00:00", "date_on_sale_to_gmt": ""
  },
  {
    "id": 12, "name": "Outlet", "type": "simple", "status": "publish", "sku": "OUT",
    "regular_price": "5", "stock_status": "instock",
    "categories": [{"id": 9, "name": "Outlet", "slug": "outlet"}],
    "date_created_gmt": "2024-03-01T10:00:00"
  }
]`

const variations = `[
  {"id": 101, "sku": "TEE-M", "regular_price": "20", "sale_price": "", "stock_status": "instock", "menu_order": 0, "image": {"id": 5, "src": "https://shop.test/tee-m.png"}},
  {"id": 102, "sku": "TEE-L", "regular_price": "22", "sale_price": "18", "stock_status": "outofstock", "menu_order": 1, "image": null}
]`

type recorded struct {
	path  string
	query string
	user  string
	pass  string
}

func newTestServer(t *testing.T) (*httptest.Server, *[]recorded) {
	t.Helper()
	var requests []recorded
	mux := http.NewServeMux()

	record := func(r *http.Request) {
		user, pass, _ := r.BasicAuth()
		requests = append(requests, recorded{path: r.URL.Path, query: r.URL.RawQuery, user: user, pass: pass})
	}

	mux.HandleFunc("/wp-json/wc/v3", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		fmt.Fprint(w, `{"namespace":"wc/v3"}`)
	})
	mux.HandleFunc("/wp-json/wc/v3/products", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.Header().Set("X-WP-TotalPages", "2")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, productsPage2)
			return
		}
		fmt.Fprint(w, productsPage1)
	})
	mux.HandleFunc("/wp-json/wc/v3/products/10/variations", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		fmt.Fprint(w, variations)
	})
	mux.HandleFunc("/wp-json/wc/v3/products/reviews", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		fmt.Fprint(w, `[
		  {"id": 1, "product_id": 10, "status": "approved", "reviewer": "Ann", "review": "Great", "rating": 5, "date_created": "2024-05-03T22:15:00"},
		  {"id": 2, "product_id": 10, "status": "hold", "reviewer": "Bo", "review": "Meh", "rating": 2, "date_created": "2024-05-04T08:00:00"},
		  {"id": 3, "product_id": 11, "status": "spam", "reviewer": "Spam", "review": "Buy", "rating": 1, "date_created": "2024-05-05T08:00:00"}
		]`)
	})
	mux.HandleFunc("/wp-json/wc/v3/orders", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		fmt.Fprint(w, `[
		  {"id": 500, "status": "completed", "date_created_gmt": "2024-05-20T09:00:00",
		   "line_items": [{"id": 1, "product_id": 10, "variation_id": 101, "quantity": 2}]}
		]`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newConnector(url string) *WooCommerceConnector {
	client := NewClient(url, "ck_test", "cs_test", 1000, logger.Discard())
	return NewWithClient(client, logger.Discard())
}

func TestProducts(t *testing.T) {
	srv, requests := newTestServer(t)
	wc := newConnector(srv.URL)

	products, err := wc.Products(context.Background(), catalog.FeedQuery([]int64{9}))
	require.NoError(t, err)
	require.Len(t, products, 2)

	tee := products[0]
	assert.Equal(t, int64(10), tee.ID)
	assert.Equal(t, models.ProductTypeVariable, tee.Type)
	assert.Equal(t, "https://shop.test/tee.png", tee.ImageURL)
	assert.Equal(t, []string{"https://shop.test/tee-2.png"}, tee.GalleryURLs)
	assert.Equal(t, []string{"Bundle"}, tee.Tags)
	assert.Equal(t, map[string]string{"_meta_description": "Meta text"}, tee.Meta)
	assert.Equal(t, 4.5, tee.AverageRating)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), tee.CreatedAt)
	assert.Nil(t, tee.SaleFrom)
	require.Len(t, tee.Variations, 2)
	assert.Equal(t, "TEE-M", tee.FirstVariation().SKU)
	assert.Equal(t, "20", tee.Variations[0].RegularPrice.String())
	assert.Equal(t, "https://shop.test/tee-m.png", tee.Variations[0].ImageURL)
	assert.True(t, tee.Variations[1].SalePrice.Valid)
	assert.Equal(t, models.StockStatusOutOfStock, tee.Variations[1].StockStatus)

	hat := products[1]
	assert.Equal(t, "CAP", hat.SKU)
	assert.Equal(t, "12.5", hat.SalePrice.Decimal.String())
	require.NotNil(t, hat.SaleFrom)
	assert.Nil(t, hat.SaleTo)
	assert.Equal(t, []int64{4}, hat.CategoryIDs())

	first := (*requests)[0]
	assert.Equal(t, "/wp-json/wc/v3/products", first.path)
	assert.Equal(t, "ck_test", first.user)
	assert.Equal(t, "cs_test", first.pass)
	assert.Contains(t, first.query, "status=publish")
	assert.Contains(t, first.query, "stock_status=instock")
	assert.Contains(t, first.query, "per_page=100")
}

func TestReviews(t *testing.T) {
	srv, requests := newTestServer(t)
	wc := newConnector(srv.URL)

	reviews, err := wc.Reviews(context.Background(), []int64{10, 11})
	require.NoError(t, err)

	require.Len(t, reviews[10], 2)
	assert.Equal(t, models.ReviewApproved, reviews[10][0].Approved)
	assert.True(t, reviews[10][0].IsApproved())
	assert.Equal(t, "0", reviews[10][1].Approved)
	assert.Equal(t, "spam", reviews[11][0].Approved)
	assert.False(t, reviews[11][0].IsApproved())

	assert.Contains(t, (*requests)[0].query, "product=10%2C11")
	assert.Contains(t, (*requests)[0].query, "status=all")
}

func TestReviewDateIsStoreLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id": 4, "product_id": 10, "status": "approved", "reviewer": "Late",
		  "date_created": "2024-05-03T23:30:00", "date_created_gmt": "2024-05-04T03:30:00"}]`)
	}))
	defer srv.Close()

	reviews, err := newConnector(srv.URL).Reviews(context.Background(), []int64{10})
	require.NoError(t, err)
	require.Len(t, reviews[10], 1)
	assert.Equal(t, "2024-05-03", reviews[10][0].CreatedAt.Format("2006-01-02"))
}

func TestReviewsWithoutProducts(t *testing.T) {
	srv, requests := newTestServer(t)
	wc := newConnector(srv.URL)

	reviews, err := wc.Reviews(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Empty(t, *requests)
}

func TestReviewsBatchesLargeCatalogs(t *testing.T) {
	var uris []string
	seen := make(map[string]bool)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uris = append(uris, r.RequestURI)
		var page []string
		for _, id := range strings.Split(r.URL.Query().Get("product"), ",") {
			seen[id] = true
			page = append(page, fmt.Sprintf(`{"id": %s, "product_id": %s, "status": "approved"}`, id, id))
		}
		fmt.Fprint(w, "["+strings.Join(page, ",")+"]")
	}))
	defer srv.Close()

	ids := make([]int64, 2500)
	for i := range ids {
		ids[i] = int64(100000 + i)
	}

	reviews, err := newConnector(srv.URL).Reviews(context.Background(), ids)
	require.NoError(t, err)

	assert.Len(t, uris, 25)
	for _, uri := range uris {
		assert.Less(t, len(uri), 2048)
	}
	assert.Len(t, seen, len(ids))
	assert.Len(t, reviews, len(ids))
	assert.Len(t, reviews[100000], 1)
}

func TestRecentOrders(t *testing.T) {
	srv, requests := newTestServer(t)
	wc := newConnector(srv.URL)

	since := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	orders, err := wc.RecentOrders(context.Background(), since, catalog.PaidStatuses)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(500), orders[0].ID)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, int64(10), orders[0].Items[0].ProductID)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)

	assert.Contains(t, (*requests)[0].query, "after=2024-05-01T00%3A00%3A00Z")
	assert.Contains(t, (*requests)[0].query, "status=completed%2Cprocessing")
}

func TestPing(t *testing.T) {
	srv, _ := newTestServer(t)
	assert.NoError(t, newConnector(srv.URL).Ping(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	err := newConnector(down.URL).Ping(context.Background())
	assert.ErrorIs(t, err, catalog.ErrStoreUnavailable)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":"woocommerce_rest_cannot_view"}`)
	}))
	defer srv.Close()

	_, err := newConnector(srv.URL).Products(context.Background(), catalog.ProductQuery{})
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "woocommerce_rest_cannot_view")
}

func TestTimeUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2024-05-01T10:00:00"`, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{`"2024-05-01T10:00:00+02:00"`, time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)},
		{`null`, time.Time{}},
		{`""`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got Time
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.True(t, tt.want.Equal(got.Time), "got %s", got.Time)
		})
	}

	var bad Time
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))
}

func sign(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"id":10}`)

	assert.NoError(t, VerifySignature(payload, sign(`{"id":10}`, "s3cret"), "s3cret"))
	assert.ErrorIs(t, VerifySignature(payload, sign(`{"id":11}`, "s3cret"), "s3cret"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature(payload, "", "s3cret"), ErrInvalidSignature)
	assert.NoError(t, VerifySignature(payload, "anything", ""))
}

func TestEventType(t *testing.T) {
	tests := []struct {
		topic string
		want  events.Type
		ok    bool
	}{
		{"product.created", events.ProductCreated, true},
		{"product.updated", events.ProductUpdated, true},
		{"product.deleted", events.ProductDeleted, true},
		{"product.restored", events.ProductUpdated, true},
		{"review.created", events.CommentCreated, true},
		{"Product_Review.Deleted", events.CommentDeleted, true},
		{"order.created", "", false},
		{"product.exported", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, ok := EventType(tt.topic)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleWebhook(t *testing.T) {
	bus := events.NewBus()
	var products []events.ProductChanged
	var comments []events.CommentChanged
	bus.OnProductChanged(func(ctx context.Context, e events.ProductChanged) error {
		products = append(products, e)
		return nil
	})
	bus.OnCommentChanged(func(ctx context.Context, e events.CommentChanged) error {
		comments = append(comments, e)
		return nil
	})
	ctx := context.Background()

	handled, err := HandleWebhook(ctx, bus, "product.updated", []byte(`{"id": 101, "parent_id": 10}`))
	require.NoError(t, err)
	assert.True(t, handled)

	handled, err = HandleWebhook(ctx, bus, "review.created", []byte(`{"id": 7, "product_id": 10}`))
	require.NoError(t, err)
	assert.True(t, handled)

	handled, err = HandleWebhook(ctx, bus, "order.created", []byte(`{"id": 1}`))
	require.NoError(t, err)
	assert.False(t, handled)

	_, err = HandleWebhook(ctx, bus, "product.created", []byte(`not json`))
	assert.Error(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, int64(10), products[0].ProductID)
	assert.Equal(t, events.ProductUpdated, products[0].Type)
	require.Len(t, comments, 1)
	assert.Equal(t, int64(7), comments[0].CommentID)
	assert.Equal(t, int64(10), comments[0].ProductID)
	assert.True(t, strings.HasPrefix(string(comments[0].Type), "comment."))
}
