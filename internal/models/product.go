package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductTypeSimple   ProductType = "simple"
	ProductTypeVariable ProductType = "variable"
)

type StockStatus string

const (
	StockStatusInStock    StockStatus = "instock"
	StockStatusOutOfStock StockStatus = "outofstock"
	StockStatusBackorder  StockStatus = "onbackorder"
)

const (
	ProductStatusPublish = "publish"
	ProductStatusDraft   = "draft"
)

// Product mirrors a store product. It is read-only to the feed generator.
type Product struct {
	ID               int64               `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SKU              string              `json:"sku" gorm:"index"`
	Name             string              `json:"name" gorm:"not null"`
	Type             ProductType         `json:"type" gorm:"default:simple"`
	Status           string              `json:"status" gorm:"index;default:publish"`
	StockStatus      StockStatus         `json:"stock_status" gorm:"index;default:instock"`
	Description      string              `json:"description" gorm:"type:text"`
	ShortDescription string              `json:"short_description" gorm:"type:text"`
	Permalink        string              `json:"permalink"`
	RegularPrice     decimal.Decimal     `json:"regular_price" gorm:"type:decimal(10,2)"`
	SalePrice        decimal.NullDecimal `json:"sale_price" gorm:"type:decimal(10,2)"`
	SaleFrom         *time.Time          `json:"sale_from"`
	SaleTo           *time.Time          `json:"sale_to"`
	ImageURL         string              `json:"image_url"`
	GalleryURLs      []string            `json:"gallery_urls" gorm:"serializer:json"`
	Tags             []string            `json:"tags" gorm:"serializer:json"`
	Meta             map[string]string   `json:"meta" gorm:"serializer:json"`
	AverageRating    float64             `json:"average_rating"`
	Categories       []Category          `json:"categories" gorm:"many2many:product_categories;"`
	Variations       []Variation         `json:"variations" gorm:"foreignKey:ProductID"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// Variation is a purchasable configuration of a variable product.
type Variation struct {
	ID           int64               `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ProductID    int64               `json:"product_id" gorm:"index;not null"`
	SKU          string              `json:"sku"`
	Position     int                 `json:"position"`
	Permalink    string              `json:"permalink"`
	RegularPrice decimal.Decimal     `json:"regular_price" gorm:"type:decimal(10,2)"`
	SalePrice    decimal.NullDecimal `json:"sale_price" gorm:"type:decimal(10,2)"`
	SaleFrom     *time.Time          `json:"sale_from"`
	SaleTo       *time.Time          `json:"sale_to"`
	ImageURL     string              `json:"image_url"`
	StockStatus  StockStatus         `json:"stock_status" gorm:"default:instock"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" gorm:"not null"`
	Slug string `json:"slug"`
}

func (p *Product) IsVariable() bool {
	return p.Type == ProductTypeVariable
}

// OnSale reports whether the product has a sale price below its regular
// price and now falls inside the optional sale window.
func (p *Product) OnSale(now time.Time) bool {
	return onSale(p.RegularPrice, p.SalePrice, p.SaleFrom, p.SaleTo, now)
}

func (v *Variation) OnSale(now time.Time) bool {
	return onSale(v.RegularPrice, v.SalePrice, v.SaleFrom, v.SaleTo, now)
}

// FirstVariation returns the first child variation, or nil.
func (p *Product) FirstVariation() *Variation {
	if len(p.Variations) == 0 {
		return nil
	}
	return &p.Variations[0]
}

func (p *Product) CategoryIDs() []int64 {
	ids := make([]int64, len(p.Categories))
	for i, c := range p.Categories {
		ids[i] = c.ID
	}
	return ids
}

func (p *Product) InAnyCategory(ids []int64) bool {
	for _, c := range p.Categories {
		for _, id := range ids {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}

func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(strings.TrimSpace(t), tag) {
			return true
		}
	}
	return false
}

// MetaValue returns the named meta field, or "" when the name is empty or unset.
func (p *Product) MetaValue(name string) string {
	if name == "" || p.Meta == nil {
		return ""
	}
	return p.Meta[name]
}

func onSale(regular decimal.Decimal, sale decimal.NullDecimal, from, to *time.Time, now time.Time) bool {
	if !sale.Valid || !sale.Decimal.LessThan(regular) {
		return false
	}
	if from != nil && now.Before(*from) {
		return false
	}
	if to != nil && now.After(*to) {
		return false
	}
	return true
}
