package feed

import (
	"strconv"
	"strings"
	"time"

	"feedgen/internal/config"
	"feedgen/internal/labels"
	"feedgen/internal/models"

	"github.com/shopspring/decimal"
)

const (
	conditionNew = "new"
	bundleTag    = "bundle"
	categoryGlue = " > "

	GoogleNS = "http://base.google.com/ns/1.0"
	AtomNS   = "http://www.w3.org/2005/Atom"

	ContentTypeXML = "application/xml; charset=utf-8"
	ContentTypeCSV = "text/csv; charset=utf-8"
)

// Input is everything a single product feed or CSV build reads.
type Input struct {
	Products []models.Product
	Settings config.Settings
	Labels   *labels.Evaluator
	Now      time.Time
}

// Item is the projection of a product, or one of its variations, into the
// merchant feed schema.
type Item struct {
	ID           string
	SKU          string
	Title        string
	Link         string
	Description  string
	ImageLink    string
	Gallery      []string
	Price        string
	SalePrice    string
	ProductType  string
	IsBundle     bool
	Availability string
	Condition    string
	Brand        string
	Labels       labels.Set

	product *models.Product
}

// Projector turns products into feed items.
type Projector struct {
	Brand    string
	Currency string
}

// Items projects every product in the input. Variable products yield their
// first variation only, or every variation when the variation mode is "all".
// Variable products without variations are skipped. With SKU de-duplication
// enabled a non-empty SKU is emitted at most once.
func (pr Projector) Items(in Input) []Item {
	var items []Item
	seen := make(map[string]struct{})

	for i := range in.Products {
		p := &in.Products[i]
		var set labels.Set
		if in.Labels != nil {
			set = in.Labels.Evaluate(p)
		}

		var projected []Item
		switch {
		case !p.IsVariable():
			projected = append(projected, pr.simple(p, set, in))
		case in.Settings.VariationMode == config.VariationAll:
			for j := range p.Variations {
				projected = append(projected, pr.variation(p, &p.Variations[j], set, in))
			}
		default:
			if v := p.FirstVariation(); v != nil {
				projected = append(projected, pr.variation(p, v, set, in))
			}
		}

		for _, item := range projected {
			if in.Settings.DedupeSKUs && item.SKU != "" {
				if _, dup := seen[item.SKU]; dup {
					continue
				}
				seen[item.SKU] = struct{}{}
			}
			items = append(items, item)
		}
	}
	return items
}

func (pr Projector) simple(p *models.Product, set labels.Set, in Input) Item {
	item := pr.base(p, set, in.Settings)
	item.ID = formatID(p.ID)
	item.SKU = p.SKU
	item.Link = p.Permalink
	item.ImageLink = p.ImageURL
	item.Availability = availability(p.StockStatus)
	item.Price, item.SalePrice = pr.prices(p.RegularPrice, p.SalePrice, p.OnSale(in.Now))
	return item
}

// variation sources identity, price and image from the variation and the
// remaining fields from the parent.
func (pr Projector) variation(p *models.Product, v *models.Variation, set labels.Set, in Input) Item {
	item := pr.base(p, set, in.Settings)
	item.ID = formatID(v.ID)
	item.SKU = firstNonEmpty(v.SKU, p.SKU)
	item.Link = firstNonEmpty(v.Permalink, p.Permalink)
	item.ImageLink = firstNonEmpty(v.ImageURL, p.ImageURL)
	item.Availability = availability(v.StockStatus)
	item.Price, item.SalePrice = pr.prices(v.RegularPrice, v.SalePrice, v.OnSale(in.Now))
	return item
}

func (pr Projector) base(p *models.Product, set labels.Set, settings config.Settings) Item {
	return Item{
		Title:       CleanText(p.Name),
		Description: description(p, settings.MetaDescriptionField),
		Gallery:     p.GalleryURLs,
		ProductType: categoryPath(p.Categories),
		IsBundle:    p.HasTag(bundleTag),
		Condition:   conditionNew,
		Brand:       pr.Brand,
		Labels:      set,
		product:     p,
	}
}

func (pr Projector) prices(regular decimal.Decimal, sale decimal.NullDecimal, onSale bool) (string, string) {
	price := pr.money(regular)
	if onSale {
		return price, pr.money(sale.Decimal)
	}
	return price, ""
}

func (pr Projector) money(d decimal.Decimal) string {
	return d.StringFixed(2) + " " + pr.Currency
}

// description prefers the meta description field, then the short
// description, then the full description.
func description(p *models.Product, metaField string) string {
	for _, candidate := range []string{p.MetaValue(metaField), p.ShortDescription, p.Description} {
		if text := CleanText(candidate); text != "" {
			return text
		}
	}
	return ""
}

func categoryPath(categories []models.Category) string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		if name := CleanText(c.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, categoryGlue)
}

func availability(status models.StockStatus) string {
	switch status {
	case models.StockStatusOutOfStock:
		return "out_of_stock"
	case models.StockStatusBackorder:
		return "backorder"
	default:
		return "in_stock"
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
