package woocommerce

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"feedgen/internal/catalog"
	"feedgen/internal/config"
	"feedgen/internal/events"
	"feedgen/internal/logger"
	"feedgen/internal/models"
)

// Webhook headers sent by WooCommerce.
const (
	HeaderTopic     = "X-WC-Webhook-Topic"
	HeaderSignature = "X-WC-Webhook-Signature"
)

// ErrInvalidSignature is returned when a webhook body does not match its signature.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// WooCommerceConnector reads the live store over the REST API. It implements
// catalog.Source and turns webhook deliveries into bus events.
type WooCommerceConnector struct {
	client      *Client
	transformer *Transformer
	logger      *logger.Logger
}

func New(cfg *config.Config, logger *logger.Logger) *WooCommerceConnector {
	return NewWithClient(NewClient(cfg.WCStoreURL, cfg.WCConsumerKey, cfg.WCConsumerSecret, cfg.WCRequestsPerSecond, logger), logger)
}

func NewWithClient(client *Client, logger *logger.Logger) *WooCommerceConnector {
	return &WooCommerceConnector{
		client:      client,
		transformer: NewTransformer(),
		logger:      logger,
	}
}

var _ catalog.Source = (*WooCommerceConnector)(nil)

func (wc *WooCommerceConnector) Ping(ctx context.Context) error {
	if err := wc.client.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// Products lists products newest first. Excluded categories are filtered
// here because the API only supports including categories.
func (wc *WooCommerceConnector) Products(ctx context.Context, q catalog.ProductQuery) ([]models.Product, error) {
	params := url.Values{}
	params.Set("orderby", "date")
	params.Set("order", "desc")
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.StockStatus != "" {
		params.Set("stock_status", string(q.StockStatus))
	}

	raw, err := wc.client.GetProducts(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := make([]models.Product, 0, len(raw))
	for i := range raw {
		p := &raw[i]
		if excluded(p.Categories, q.ExcludedCategories) {
			continue
		}

		var variations []Variation
		if models.ProductType(p.Type) == models.ProductTypeVariable {
			variations, err = wc.client.GetVariations(ctx, p.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch variations of product %d: %w", p.ID, err)
			}
		}
		products = append(products, wc.transformer.TransformProduct(p, variations))
	}

	wc.logger.Debug("Fetched %d products from WooCommerce", len(products))
	return products, nil
}

func (wc *WooCommerceConnector) Reviews(ctx context.Context, productIDs []int64) (map[int64][]models.Review, error) {
	out := make(map[int64][]models.Review)
	if len(productIDs) == 0 {
		return out, nil
	}

	raw, err := wc.client.GetReviews(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	for i := range raw {
		r := wc.transformer.TransformReview(&raw[i])
		out[r.ProductID] = append(out[r.ProductID], r)
	}
	return out, nil
}

func (wc *WooCommerceConnector) RecentOrders(ctx context.Context, since time.Time, statuses []string) ([]models.Order, error) {
	raw, err := wc.client.GetOrders(ctx, since, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	orders := make([]models.Order, 0, len(raw))
	for i := range raw {
		orders = append(orders, wc.transformer.TransformOrder(&raw[i]))
	}
	return orders, nil
}

func excluded(categories []Category, ids []int64) bool {
	for _, c := range categories {
		for _, id := range ids {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}

// VerifySignature checks the base64 HMAC-SHA256 of payload. An empty secret
// disables verification.
func VerifySignature(payload []byte, signature, secret string) error {
	if secret == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// HandleWebhook publishes the bus event for a webhook delivery. It reports
// false for topics that do not affect the feeds and for payloads that cannot
// be decoded.
func HandleWebhook(ctx context.Context, bus *events.Bus, topic string, payload []byte) (bool, error) {
	typ, ok := EventType(topic)
	if !ok {
		return false, nil
	}

	var body WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return false, fmt.Errorf("failed to unmarshal webhook payload: %w", err)
	}

	if typ.IsProduct() {
		productID := body.ID
		if body.ParentID != 0 {
			productID = body.ParentID
		}
		return true, bus.PublishProductChanged(ctx, events.ProductChanged{Type: typ, ProductID: productID})
	}
	return true, bus.PublishCommentChanged(ctx, events.CommentChanged{Type: typ, CommentID: body.ID, ProductID: body.ProductID})
}

// EventType maps a webhook topic such as "product.updated" or
// "review.created" onto a bus event type. "restored" counts as an update.
func EventType(topic string) (events.Type, bool) {
	resource, action, found := strings.Cut(strings.ToLower(strings.TrimSpace(topic)), ".")
	if !found {
		return "", false
	}

	var kind string
	switch resource {
	case "product":
		kind = "product"
	case "review", "product_review", "comment":
		kind = "comment"
	default:
		return "", false
	}

	switch action {
	case "created", "updated", "deleted":
	case "restored":
		action = "updated"
	default:
		return "", false
	}
	return events.Type(kind + "." + action), true
}
