package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

type productFeedDocument struct {
	XMLName  xml.Name      `xml:"feed"`
	Xmlns    string        `xml:"xmlns,attr"`
	XmlnsG   string        `xml:"xmlns:g,attr"`
	Title    string        `xml:"title"`
	Link     atomLink      `xml:"link"`
	Subtitle string        `xml:"subtitle,omitempty"`
	Updated  string        `xml:"updated"`
	Items    []productItem `xml:"item"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

type productItem struct {
	ID              string   `xml:"g:id"`
	SKU             string   `xml:"g:sku"`
	Title           string   `xml:"title"`
	Link            string   `xml:"link"`
	Description     string   `xml:"description"`
	ImageLink       string   `xml:"g:image_link,omitempty"`
	AdditionalImage []string `xml:"g:additional_image_link"`
	Price           string   `xml:"g:price"`
	SalePrice       string   `xml:"g:sale_price,omitempty"`
	ProductType     string   `xml:"g:product_type,omitempty"`
	IsBundle        string   `xml:"g:is_bundle"`
	Availability    string   `xml:"g:availability"`
	Condition       string   `xml:"g:condition"`
	Brand           string   `xml:"g:brand"`
	CustomLabel0    string   `xml:"g:custom_label_0"`
	CustomLabel1    string   `xml:"g:custom_label_1"`
	CustomLabel2    string   `xml:"g:custom_label_2"`
	CustomLabel3    string   `xml:"g:custom_label_3"`
	CustomLabel4    string   `xml:"g:custom_label_4"`
}

// ProductFeedBuilder writes the Google Merchant product feed.
type ProductFeedBuilder struct {
	Projector
	SiteName        string
	SiteURL         string
	SiteDescription string
}

func NewProductFeedBuilder(siteName, siteURL, siteDescription, currency string) *ProductFeedBuilder {
	return &ProductFeedBuilder{
		Projector: Projector{
			Brand:    siteName,
			Currency: currency,
		},
		SiteName:        siteName,
		SiteURL:         siteURL,
		SiteDescription: siteDescription,
	}
}

// Build writes one <item> per projected product.
func (b *ProductFeedBuilder) Build(w io.Writer, in Input) error {
	items := b.Items(in)

	doc := productFeedDocument{
		Xmlns:    AtomNS,
		XmlnsG:   GoogleNS,
		Title:    CleanText(b.SiteName),
		Link:     atomLink{Rel: "self", Href: b.SiteURL},
		Subtitle: CleanText(b.SiteDescription),
		Updated:  in.Now.UTC().Format(time.RFC3339),
		Items:    make([]productItem, 0, len(items)),
	}

	for _, item := range items {
		doc.Items = append(doc.Items, productItem{
			ID:              item.ID,
			SKU:             item.SKU,
			Title:           item.Title,
			Link:            item.Link,
			Description:     item.Description,
			ImageLink:       item.ImageLink,
			AdditionalImage: item.Gallery,
			Price:           item.Price,
			SalePrice:       item.SalePrice,
			ProductType:     item.ProductType,
			IsBundle:        yesNo(item.IsBundle),
			Availability:    item.Availability,
			Condition:       item.Condition,
			Brand:           item.Brand,
			CustomLabel0:    item.Labels[0],
			CustomLabel1:    item.Labels[1],
			CustomLabel2:    item.Labels[2],
			CustomLabel3:    item.Labels[3],
			CustomLabel4:    item.Labels[4],
		})
	}

	return encodeXML(w, doc)
}

// WriteError writes the document served when the store is unavailable.
func WriteError(w io.Writer, message string) error {
	if _, err := io.WriteString(w, xml.Header+"<error>"); err != nil {
		return err
	}
	if err := xml.EscapeText(w, []byte(message)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</error>\n")
	return err
}

func encodeXML(w io.Writer, doc interface{}) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write xml header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode feed: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("failed to flush feed: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
