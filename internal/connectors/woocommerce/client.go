package woocommerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"feedgen/internal/logger"

	"golang.org/x/time/rate"
)

const (
	apiPrefix = "/wp-json/wc/v3"
	perPage   = 100

	reviewBatchSize = 100
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// Client talks to the WooCommerce REST API v3 with consumer key
// authentication.
type Client struct {
	storeURL       string
	consumerKey    string
	consumerSecret string
	httpClient     *http.Client
	limiter        *rate.Limiter
	logger         *logger.Logger
}

func NewClient(storeURL, consumerKey, consumerSecret string, requestsPerSecond int, logger *logger.Logger) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &Client{
		storeURL:       strings.TrimRight(storeURL, "/"),
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		logger:  logger,
	}
}

// Ping checks that the WooCommerce API namespace is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, "", nil, nil)
	return err
}

// GetProducts fetches every product matching params.
func (c *Client) GetProducts(ctx context.Context, params url.Values) ([]Product, error) {
	var all []Product
	err := c.paginate(ctx, "/products", params, func(body io.Reader) error {
		var page []Product
		if err := json.NewDecoder(body).Decode(&page); err != nil {
			return err
		}
		all = append(all, page...)
		return nil
	})
	return all, err
}

// GetVariations fetches all variations of a variable product in menu order.
func (c *Client) GetVariations(ctx context.Context, productID int64) ([]Variation, error) {
	params := url.Values{}
	params.Set("orderby", "menu_order")
	params.Set("order", "asc")

	var all []Variation
	err := c.paginate(ctx, fmt.Sprintf("/products/%d/variations", productID), params, func(body io.Reader) error {
		var page []Variation
		if err := json.NewDecoder(body).Decode(&page); err != nil {
			return err
		}
		all = append(all, page...)
		return nil
	})
	return all, err
}

// GetProduct fetches one product by id.
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var product Product
	_, err := c.get(ctx, fmt.Sprintf("/products/%d", id), nil, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(&product)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetReviews fetches reviews of any status for the given products. Ids are
// sent in batches of reviewBatchSize to keep request lines short.
func (c *Client) GetReviews(ctx context.Context, productIDs []int64) ([]Review, error) {
	var all []Review
	for start := 0; start < len(productIDs); start += reviewBatchSize {
		end := min(start+reviewBatchSize, len(productIDs))

		ids := make([]string, 0, end-start)
		for _, id := range productIDs[start:end] {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		params := url.Values{}
		params.Set("status", "all")
		params.Set("product", strings.Join(ids, ","))

		err := c.paginate(ctx, "/products/reviews", params, func(body io.Reader) error {
			var page []Review
			if err := json.NewDecoder(body).Decode(&page); err != nil {
				return err
			}
			all = append(all, page...)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return all, nil
}

// GetReview fetches one product review by id.
func (c *Client) GetReview(ctx context.Context, id int64) (*Review, error) {
	var review Review
	_, err := c.get(ctx, fmt.Sprintf("/products/reviews/%d", id), nil, func(body io.Reader) error {
		return json.NewDecoder(body).Decode(&review)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetOrders fetches orders created after since with one of the statuses.
func (c *Client) GetOrders(ctx context.Context, since time.Time, statuses []string) ([]Order, error) {
	params := url.Values{}
	params.Set("after", since.UTC().Format(time.RFC3339))
	if len(statuses) > 0 {
		params.Set("status", strings.Join(statuses, ","))
	}

	var all []Order
	err := c.paginate(ctx, "/orders", params, func(body io.Reader) error {
		var page []Order
		if err := json.NewDecoder(body).Decode(&page); err != nil {
			return err
		}
		all = append(all, page...)
		return nil
	})
	return all, err
}

// paginate follows X-WP-TotalPages until every page has been decoded.
func (c *Client) paginate(ctx context.Context, path string, params url.Values, decode func(io.Reader) error) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("per_page", strconv.Itoa(perPage))

	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		totalPages, err := c.get(ctx, path, q, decode)
		if err != nil {
			return err
		}
		if page >= totalPages {
			return nil
		}
	}
}

// get performs one throttled request and returns the X-WP-TotalPages header
// (1 when absent).
func (c *Client) get(ctx context.Context, path string, params url.Values, decode func(io.Reader) error) (int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	endpoint := c.storeURL + apiPrefix + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.consumerKey, c.consumerSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if decode != nil {
		if err := decode(resp.Body); err != nil {
			return 0, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	totalPages := 1
	if raw := resp.Header.Get("X-WP-TotalPages"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			totalPages = n
		}
	}
	if c.logger != nil {
		c.logger.Debug("GET %s%s page=%s/%d", apiPrefix, path, params.Get("page"), totalPages)
	}
	return totalPages, nil
}
