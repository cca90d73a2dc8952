// Package labels computes the five Google Merchant custom labels attached to
// every feed item.
package labels

import (
	"strings"
	"time"

	"feedgen/internal/config"
	"feedgen/internal/models"
)

const day = 24 * time.Hour

// Count is the number of custom labels per item.
const Count = 5

// Set holds custom_label_0 through custom_label_4.
type Set [Count]string

// Evaluator is built once per feed build. It is not safe to mutate after construction.
type Evaluator struct {
	settings config.LabelSettings
	now      time.Time
	ordered  map[int64]struct{}
}

// New returns an Evaluator. recentOrders should already be limited to the
// popularity window and paid statuses; orders outside the window are ignored anyway.
func New(settings config.LabelSettings, now time.Time, recentOrders []models.Order) *Evaluator {
	e := &Evaluator{
		settings: settings,
		now:      now,
		ordered:  make(map[int64]struct{}),
	}

	if settings.MostOrderedDays > 0 {
		since := e.PopularitySince()
		for _, order := range recentOrders {
			if order.CreatedAt.Before(since) {
				continue
			}
			for _, item := range order.Items {
				e.ordered[item.ProductID] = struct{}{}
			}
		}
	}
	return e
}

// PopularitySince is the start of the popularity window.
func (e *Evaluator) PopularitySince() time.Time {
	return e.now.Add(-time.Duration(e.settings.MostOrderedDays) * day)
}

// NeedsOrders reports whether the popularity label is configured.
func (e *Evaluator) NeedsOrders() bool {
	return NeedsOrders(e.settings)
}

func NeedsOrders(settings config.LabelSettings) bool {
	return settings.MostOrderedDays > 0 && settings.MostOrderedValue != ""
}

func (e *Evaluator) Evaluate(p *models.Product) Set {
	return Set{
		e.Age(p),
		e.Popularity(p),
		e.Rating(p),
		e.Category(p),
		e.OnSale(p),
	}
}

// Age is custom_label_0.
func (e *Evaluator) Age(p *models.Product) string {
	s := e.settings
	age := e.now.Sub(p.CreatedAt)

	older := s.OlderThanDays > 0 && s.OlderThanValue != "" &&
		age > time.Duration(s.OlderThanDays)*day
	newer := s.NotOlderThanDays > 0 && s.NotOlderThanValue != "" &&
		age <= time.Duration(s.NotOlderThanDays)*day

	if s.AgePrecedence == config.PreferNewer {
		if newer {
			return s.NotOlderThanValue
		}
		if older {
			return s.OlderThanValue
		}
		return ""
	}

	if older {
		return s.OlderThanValue
	}
	if newer {
		return s.NotOlderThanValue
	}
	return ""
}

// Popularity is custom_label_1.
func (e *Evaluator) Popularity(p *models.Product) string {
	if !e.NeedsOrders() {
		return ""
	}
	if _, ok := e.ordered[p.ID]; ok {
		return e.settings.MostOrderedValue
	}
	return ""
}

// Rating is custom_label_2.
func (e *Evaluator) Rating(p *models.Product) string {
	if e.settings.HighRatingValue == "" {
		return ""
	}
	if p.AverageRating >= e.settings.HighRatingThreshold {
		return e.settings.HighRatingValue
	}
	return ""
}

// Category is custom_label_3.
func (e *Evaluator) Category(p *models.Product) string {
	ids := e.settings.CategoryIDs
	values := e.settings.CategoryValues

	var matched []string
	for _, category := range p.Categories {
		for i, id := range ids {
			if id == 0 || id != category.ID || i >= len(values) || values[i] == "" {
				continue
			}
			matched = append(matched, values[i])
		}
	}
	return strings.Join(matched, ", ")
}

// OnSale is custom_label_4.
func (e *Evaluator) OnSale(p *models.Product) string {
	if e.settings.OnSaleValue == "" {
		return ""
	}
	if p.InAnyCategory(e.settings.SaleExcludedCategories) {
		return ""
	}

	if p.IsVariable() {
		v := p.FirstVariation()
		if v != nil && v.OnSale(e.now) {
			return e.settings.OnSaleValue
		}
		return ""
	}

	if p.OnSale(e.now) {
		return e.settings.OnSaleValue
	}
	return ""
}
