package feed

import (
	"encoding/xml"
	"io"
	"strconv"

	"feedgen/internal/models"
)

const reviewDateLayout = "2006-01-02"

type reviewFeedDocument struct {
	XMLName xml.Name     `xml:"feed"`
	XmlnsG  string       `xml:"xmlns:g,attr"`
	Entries []reviewItem `xml:"entry"`
}

type reviewItem struct {
	ID         string `xml:"g:id"`
	Title      string `xml:"g:title"`
	Content    string `xml:"g:content"`
	Reviewer   string `xml:"g:reviewer"`
	ReviewDate string `xml:"g:review_date"`
	Rating     string `xml:"g:rating"`
}

// ReviewEntry is one approved review as emitted in the reviews feed.
type ReviewEntry struct {
	ProductID    int64
	SKU          string
	ProductTitle string
	Reviewer     string
	Content      string
	Date         string
	Rating       string
}

// ReviewFeedBuilder writes the Google product reviews feed.
type ReviewFeedBuilder struct{}

func NewReviewFeedBuilder() *ReviewFeedBuilder {
	return &ReviewFeedBuilder{}
}

// Entries walks products in order and keeps reviews whose approval status is exactly "1".
func (b *ReviewFeedBuilder) Entries(products []models.Product, reviews map[int64][]models.Review) []ReviewEntry {
	var entries []ReviewEntry
	for i := range products {
		p := &products[i]
		for _, review := range reviews[p.ID] {
			if !review.IsApproved() {
				continue
			}
			rating := ""
			if review.Rating > 0 {
				rating = strconv.Itoa(review.Rating)
			}
			entries = append(entries, ReviewEntry{
				ProductID:    p.ID,
				SKU:          p.SKU,
				ProductTitle: CleanText(p.Name),
				Reviewer:     CleanText(review.Author),
				Content:      CleanText(review.Content),
				Date:         review.CreatedAt.Format(reviewDateLayout),
				Rating:       rating,
			})
		}
	}
	return entries
}

func (b *ReviewFeedBuilder) Build(w io.Writer, products []models.Product, reviews map[int64][]models.Review) error {
	entries := b.Entries(products, reviews)

	doc := reviewFeedDocument{
		XmlnsG:  GoogleNS,
		Entries: make([]reviewItem, 0, len(entries)),
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, reviewItem{
			ID:         e.SKU,
			Title:      e.ProductTitle,
			Content:    e.Content,
			Reviewer:   e.Reviewer,
			ReviewDate: e.Date,
			Rating:     e.Rating,
		})
	}
	return encodeXML(w, doc)
}
