package woocommerce

import (
	"encoding/json"
	"strconv"
	"strings"

	"feedgen/internal/models"

	"github.com/shopspring/decimal"
)

type Transformer struct{}

func NewTransformer() *Transformer {
	return &Transformer{}
}

// TransformProduct converts a WooCommerce product and its variations to the catalog model.
func (t *Transformer) TransformProduct(p *Product, variations []Variation) models.Product {
	product := models.Product{
		ID:               p.ID,
		SKU:              p.SKU,
		Name:             p.Name,
		Type:             models.ProductType(p.Type),
		Status:           p.Status,
		StockStatus:      models.StockStatus(p.StockStatus),
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		Permalink:        p.Permalink,
		RegularPrice:     parsePrice(p.RegularPrice),
		SalePrice:        parseNullPrice(p.SalePrice),
		SaleFrom:         p.DateOnSaleFrom.Ptr(),
		SaleTo:           p.DateOnSaleTo.Ptr(),
		AverageRating:    parseRating(p.AverageRating),
		Meta:             transformMeta(p.MetaData),
		CreatedAt:        p.DateCreated.Time,
		UpdatedAt:        p.DateModified.Time,
	}

	for i, img := range p.Images {
		if i == 0 {
			product.ImageURL = img.Src
			continue
		}
		product.GalleryURLs = append(product.GalleryURLs, img.Src)
	}
	for _, tag := range p.Tags {
		product.Tags = append(product.Tags, tag.Name)
	}
	for _, c := range p.Categories {
		product.Categories = append(product.Categories, models.Category{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}
	for i := range variations {
		product.Variations = append(product.Variations, t.TransformVariation(p.ID, i, &variations[i]))
	}
	return product
}

// TransformVariation keeps the API order as the variation position.
func (t *Transformer) TransformVariation(productID int64, position int, v *Variation) models.Variation {
	variation := models.Variation{
		ID:           v.ID,
		ProductID:    productID,
		SKU:          v.SKU,
		Position:     position,
		Permalink:    v.Permalink,
		RegularPrice: parsePrice(v.RegularPrice),
		SalePrice:    parseNullPrice(v.SalePrice),
		SaleFrom:     v.DateOnSaleFrom.Ptr(),
		SaleTo:       v.DateOnSaleTo.Ptr(),
		StockStatus:  models.StockStatus(v.StockStatus),
	}
	if v.Image != nil {
		variation.ImageURL = v.Image.Src
	}
	return variation
}

// TransformReview maps the REST review status onto the comment approval
// flag: only "approved" becomes "1".
func (t *Transformer) TransformReview(r *Review) models.Review {
	approved := r.Status
	switch r.Status {
	case "approved":
		approved = models.ReviewApproved
	case "hold":
		approved = "0"
	}
	return models.Review{
		ID:        r.ID,
		ProductID: r.ProductID,
		Author:    r.Reviewer,
		Content:   r.Review,
		Approved:  approved,
		Rating:    r.Rating,
		CreatedAt: r.DateCreated.Time,
	}
}

func (t *Transformer) TransformOrder(o *Order) models.Order {
	order := models.Order{
		ID:        o.ID,
		Status:    o.Status,
		CreatedAt: o.DateCreated.Time,
	}
	for _, item := range o.LineItems {
		order.Items = append(order.Items, models.OrderItem{
			ID:          item.ID,
			OrderID:     o.ID,
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
		})
	}
	return order
}

func parsePrice(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseNullPrice(raw string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func parseRating(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return f
}

func transformMeta(meta []MetaData) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for _, m := range meta {
		var s string
		if err := json.Unmarshal(m.Value, &s); err == nil {
			out[m.Key] = s
		}
	}
	return out
}
