package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// Option names as stored in the options table. Environment defaults use the
// upper-cased name with a FEED_ prefix.
const (
	OptionExcludedCategories     = "excluded_categories"
	OptionExcludePatterns        = "exclude_patterns"
	OptionMetaDescriptionField   = "meta_description_field"
	OptionMetaTitleField         = "meta_title_field"
	OptionCSVDescriptionField    = "meta_csv_description_field"
	OptionGoogleProductCategory  = "google_product_category"
	OptionGoogleCategoryIDOnly   = "google_category_id_only"
	OptionCacheDuration          = "cache_duration"
	OptionClearCache             = "clear_cache"
	OptionVariationMode          = "variation_mode"
	OptionDedupeSKUs             = "dedupe_skus"
	OptionLabel0OlderThanDays    = "custom_label_0_older_than_days"
	OptionLabel0OlderThanValue   = "custom_label_0_older_than_value"
	OptionLabel0NotOlderDays     = "custom_label_0_not_older_than_days"
	OptionLabel0NotOlderValue    = "custom_label_0_not_older_than_value"
	OptionLabel0Precedence       = "custom_label_0_precedence"
	OptionLabel1MostOrderedDays  = "custom_label_1_most_ordered_days"
	OptionLabel1MostOrderedValue = "custom_label_1_most_ordered_value"
	OptionLabel2HighRatingValue  = "custom_label_2_high_rating_value"
	OptionLabel2RatingThreshold  = "custom_label_2_high_rating_threshold"
	OptionLabel3Categories       = "custom_label_3_category"
	OptionLabel3CategoryValues   = "custom_label_3_category_value"
	OptionLabel4ExcludedCategory = "custom_label_4_excluded_category"
	OptionLabel4SalePriceValue   = "custom_label_4_sale_price_value"
)

// OptionNames lists every option understood by ParseSettings.
var OptionNames = []string{
	OptionExcludedCategories,
	OptionExcludePatterns,
	OptionMetaDescriptionField,
	OptionMetaTitleField,
	OptionCSVDescriptionField,
	OptionGoogleProductCategory,
	OptionGoogleCategoryIDOnly,
	OptionCacheDuration,
	OptionClearCache,
	OptionVariationMode,
	OptionDedupeSKUs,
	OptionLabel0OlderThanDays,
	OptionLabel0OlderThanValue,
	OptionLabel0NotOlderDays,
	OptionLabel0NotOlderValue,
	OptionLabel0Precedence,
	OptionLabel1MostOrderedDays,
	OptionLabel1MostOrderedValue,
	OptionLabel2HighRatingValue,
	OptionLabel2RatingThreshold,
	OptionLabel3Categories,
	OptionLabel3CategoryValues,
	OptionLabel4ExcludedCategory,
	OptionLabel4SalePriceValue,
}

type VariationMode string

const (
	VariationFirst VariationMode = "first"
	VariationAll   VariationMode = "all"
)

// AgePrecedence decides which age label wins when both windows match.
type AgePrecedence string

const (
	PreferOlder AgePrecedence = "older"
	PreferNewer AgePrecedence = "newer"
)

const (
	DefaultCacheDuration   = 12 * time.Hour
	DefaultRatingThreshold = 4.0
)

type LabelSettings struct {
	OlderThanDays     int
	OlderThanValue    string
	NotOlderThanDays  int
	NotOlderThanValue string
	AgePrecedence     AgePrecedence

	MostOrderedDays  int
	MostOrderedValue string

	HighRatingValue     string
	HighRatingThreshold float64

	// CategoryIDs and CategoryValues correspond by position.
	CategoryIDs    []int64
	CategoryValues []string

	SaleExcludedCategories []int64
	OnSaleValue            string
}

// Settings is the feed configuration read at build time.
type Settings struct {
	ExcludedCategories    []int64
	ExcludePatterns       []string
	MetaDescriptionField  string
	MetaTitleField        string
	CSVDescriptionField   string
	GoogleProductCategory string
	GoogleCategoryIDOnly  bool
	CacheDuration         time.Duration
	ClearCache            bool
	VariationMode         VariationMode
	DedupeSKUs            bool
	Labels                LabelSettings
}

// SettingsSource loads Settings for a single build.
type SettingsSource interface {
	Load(ctx context.Context) (Settings, error)
}

// StaticSettings serves a fixed Settings value.
type StaticSettings struct {
	Settings Settings
}

func (s StaticSettings) Load(ctx context.Context) (Settings, error) {
	return s.Settings, nil
}

// EnvOptions collects option values from FEED_* environment variables.
func EnvOptions() map[string]string {
	options := make(map[string]string)
	for _, name := range OptionNames {
		if value, ok := os.LookupEnv("FEED_" + strings.ToUpper(name)); ok {
			options[name] = value
		}
	}
	return options
}

func ParseSettings(options map[string]string) Settings {
	return Settings{
		ExcludedCategories:    parseIDs(options[OptionExcludedCategories]),
		ExcludePatterns:       parseList(options[OptionExcludePatterns]),
		MetaDescriptionField:  strings.TrimSpace(options[OptionMetaDescriptionField]),
		MetaTitleField:        strings.TrimSpace(options[OptionMetaTitleField]),
		CSVDescriptionField:   strings.TrimSpace(options[OptionCSVDescriptionField]),
		GoogleProductCategory: strings.TrimSpace(options[OptionGoogleProductCategory]),
		GoogleCategoryIDOnly:  parseBool(options[OptionGoogleCategoryIDOnly], false),
		CacheDuration:         parseHours(options[OptionCacheDuration], DefaultCacheDuration),
		ClearCache:            parseBool(options[OptionClearCache], false),
		VariationMode:         parseVariationMode(options[OptionVariationMode]),
		DedupeSKUs:            parseBool(options[OptionDedupeSKUs], true),
		Labels: LabelSettings{
			OlderThanDays:          parseInt(options[OptionLabel0OlderThanDays], 0),
			OlderThanValue:         strings.TrimSpace(options[OptionLabel0OlderThanValue]),
			NotOlderThanDays:       parseInt(options[OptionLabel0NotOlderDays], 0),
			NotOlderThanValue:      strings.TrimSpace(options[OptionLabel0NotOlderValue]),
			AgePrecedence:          parseAgePrecedence(options[OptionLabel0Precedence]),
			MostOrderedDays:        parseInt(options[OptionLabel1MostOrderedDays], 0),
			MostOrderedValue:       strings.TrimSpace(options[OptionLabel1MostOrderedValue]),
			HighRatingValue:        strings.TrimSpace(options[OptionLabel2HighRatingValue]),
			HighRatingThreshold:    parseFloat(options[OptionLabel2RatingThreshold], DefaultRatingThreshold),
			CategoryIDs:            parsePositionalIDs(options[OptionLabel3Categories]),
			CategoryValues:         parsePositional(options[OptionLabel3CategoryValues]),
			SaleExcludedCategories: parseIDs(options[OptionLabel4ExcludedCategory]),
			OnSaleValue:            strings.TrimSpace(options[OptionLabel4SalePriceValue]),
		},
	}
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseIDs(raw string) []int64 {
	var out []int64
	for _, part := range parseList(raw) {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil && id > 0 {
			out = append(out, id)
		}
	}
	return out
}

// parsePositional keeps empty entries so indexes line up with a sibling list.
func parsePositional(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parsePositionalIDs maps unparsable entries to 0, which matches no category.
func parsePositionalIDs(raw string) []int64 {
	parts := parsePositional(raw)
	if parts == nil {
		return nil
	}
	out := make([]int64, len(parts))
	for i, part := range parts {
		if id, err := strconv.ParseInt(part, 10, 64); err == nil {
			out[i] = id
		}
	}
	return out
}

func parseBool(raw string, defaultValue bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func parseInt(raw string, defaultValue int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		return v
	}
	return defaultValue
}

func parseFloat(raw string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return v
	}
	return defaultValue
}

func parseHours(raw string, defaultValue time.Duration) time.Duration {
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && v > 0 {
		return time.Duration(v * float64(time.Hour))
	}
	return defaultValue
}

func parseVariationMode(raw string) VariationMode {
	if VariationMode(strings.ToLower(strings.TrimSpace(raw))) == VariationAll {
		return VariationAll
	}
	return VariationFirst
}

func parseAgePrecedence(raw string) AgePrecedence {
	if AgePrecedence(strings.ToLower(strings.TrimSpace(raw))) == PreferNewer {
		return PreferNewer
	}
	return PreferOlder
}
