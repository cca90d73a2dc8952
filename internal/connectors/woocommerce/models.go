package woocommerce

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// wcTimeLayout is the format of the *_gmt date fields of the REST API.
const wcTimeLayout = "2006-01-02T15:04:05"

// Time decodes WooCommerce GMT timestamps, which carry no zone suffix. Null
// and empty values decode to the zero time.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(wcTimeLayout, string(data), time.UTC)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, string(data))
		if err != nil {
			return fmt.Errorf("invalid woocommerce time %q: %w", data, err)
		}
	}
	t.Time = parsed
	return nil
}

func (t Time) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

// Product represents a WooCommerce product
type Product struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	Permalink        string     `json:"permalink"`
	Type             string     `json:"type"`
	Status           string     `json:"status"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"short_description"`
	SKU              string     `json:"sku"`
	RegularPrice     string     `json:"regular_price"`
	SalePrice        string     `json:"sale_price"`
	DateOnSaleFrom   Time       `json:"date_on_sale_from_gmt"`
	DateOnSaleTo     Time       `json:"date_on_sale_to_gmt"`
	StockStatus      string     `json:"stock_status"`
	AverageRating    string     `json:"average_rating"`
	Categories       []Category `json:"categories"`
	Tags             []Tag      `json:"tags"`
	Images           []Image    `json:"images"`
	MetaData         []MetaData `json:"meta_data"`
	Variations       []int64    `json:"variations"`
	DateCreated      Time       `json:"date_created_gmt"`
	DateModified     Time       `json:"date_modified_gmt"`
}

// Variation represents a variation of a variable product
type Variation struct {
	ID             int64  `json:"id"`
	SKU            string `json:"sku"`
	Permalink      string `json:"permalink"`
	RegularPrice   string `json:"regular_price"`
	SalePrice      string `json:"sale_price"`
	DateOnSaleFrom Time   `json:"date_on_sale_from_gmt"`
	DateOnSaleTo   Time   `json:"date_on_sale_to_gmt"`
	StockStatus    string `json:"stock_status"`
	MenuOrder      int    `json:"menu_order"`
	Image          *Image `json:"image"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// MetaData values may be any JSON type; only strings are kept.
type MetaData struct {
	ID    int64           `json:"id"`
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Review represents a product review. DateCreated is the store-local wall
// clock, which is what the review feed's date reports.
type Review struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"product_id"`
	Status      string `json:"status"`
	Reviewer    string `json:"reviewer"`
	Review      string `json:"review"`
	Rating      int    `json:"rating"`
	DateCreated Time   `json:"date_created"`
}

// Order represents an order with its line items
type Order struct {
	ID          int64      `json:"id"`
	Status      string     `json:"status"`
	DateCreated Time       `json:"date_created_gmt"`
	LineItems   []LineItem `json:"line_items"`
}

type LineItem struct {
	ID          int64 `json:"id"`
	ProductID   int64 `json:"product_id"`
	VariationID int64 `json:"variation_id"`
	Quantity    int   `json:"quantity"`
}

// WebhookPayload is the subset of a product or review webhook body used to
// route the event.
type WebhookPayload struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	ParentID  int64 `json:"parent_id"`
}
