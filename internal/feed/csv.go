package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVFilename is the attachment name of the CSV export.
const CSVFilename = "woocommerce-products.csv"

// CSVHeader is the fixed column order of the export.
var CSVHeader = []string{
	"ID",
	"ID2",
	"Final URL",
	"Final Mobile URL",
	"Image URL",
	"Item Title",
	"Item Description",
	"Item Category",
	"Price",
	"Sale Price",
	"Google Product Category",
	"Is Bundle",
	"MPN",
	"Availability",
	"Condition",
	"Brand",
	"Custom Label 0",
	"Custom Label 1",
	"Custom Label 2",
	"Custom Label 3",
	"Custom Label 4",
}

// CSVExporter writes the tabular product export.
type CSVExporter struct {
	Projector
}

func NewCSVExporter(brand, currency string) *CSVExporter {
	return &CSVExporter{
		Projector: Projector{
			Brand:    brand,
			Currency: currency,
		},
	}
}

// Export writes the header and one row per item. Rows whose link contains
// an exclude pattern, or whose SKU is empty, are skipped.
func (e *CSVExporter) Export(w io.Writer, in Input) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	googleCategory := GoogleCategory(in.Settings.GoogleProductCategory, in.Settings.GoogleCategoryIDOnly)

	for _, item := range e.Items(in) {
		if item.SKU == "" || matchesAny(item.Link, in.Settings.ExcludePatterns) {
			continue
		}

		title := item.Title
		if override := CleanText(item.product.MetaValue(in.Settings.MetaTitleField)); override != "" {
			title = override
		}
		desc := item.Description
		if override := CleanText(item.product.MetaValue(in.Settings.CSVDescriptionField)); override != "" {
			desc = override
		}

		row := []string{
			item.ID,
			item.SKU,
			item.Link,
			item.Link,
			item.ImageLink,
			title,
			desc,
			item.ProductType,
			item.Price,
			item.SalePrice,
			googleCategory,
			yesNo(item.IsBundle),
			item.SKU,
			item.Availability,
			item.Condition,
			item.Brand,
			item.Labels[0],
			item.Labels[1],
			item.Labels[2],
			item.Labels[3],
			item.Labels[4],
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", item.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// GoogleCategory returns the configured Google product category, reduced to
// its leading numeric id when idOnly is set ("2271 - Apparel > Dresses" -> "2271").
func GoogleCategory(value string, idOnly bool) string {
	value = strings.TrimSpace(value)
	if !idOnly {
		return value
	}
	end := 0
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == 0 {
		return value
	}
	return value[:end]
}

func matchesAny(link string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(link, pattern) {
			return true
		}
	}
	return false
}
