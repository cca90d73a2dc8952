package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string
	KafkaTopic   string
	KafkaGroupID string

	// API Configuration
	APIPort string
	APIHost string

	// Admin API and webhooks
	AdminAPIKey        string
	WebhookSecret      string
	CORSAllowedOrigins []string

	// Catalog source: "database" reads the local mirror, "woocommerce" calls the store REST API
	CatalogSource       string
	WCStoreURL          string
	WCConsumerKey       string
	WCConsumerSecret    string
	WCRequestsPerSecond int

	// Database mirror sync from WooCommerce
	CatalogSyncInterval time.Duration
	SyncOrdersWindow    time.Duration

	// Store identity used in feeds
	SiteName        string
	SiteURL         string
	SiteDescription string
	Currency        string

	// Feed cache
	CacheBackend string
	CachePrefix  string
	FeedFilePath string

	// Google product taxonomy list
	TaxonomyURL string

	// Scheduled regeneration
	ProductFeedInterval time.Duration
	ReviewsFeedInterval time.Duration

	// Environment
	Env      string
	LogLevel string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:         getEnv("DATABASE_URL", "sqlite://feedgen.db"),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "product-events"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "feedgen-worker"),
		APIPort:             getEnv("API_PORT", "8080"),
		APIHost:             getEnv("API_HOST", "0.0.0.0"),
		AdminAPIKey:         getEnv("ADMIN_API_KEY", ""),
		WebhookSecret:       getEnv("WEBHOOK_SECRET", ""),
		CORSAllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		CatalogSource:       getEnv("CATALOG_SOURCE", "database"),
		WCStoreURL:          getEnv("WC_STORE_URL", ""),
		WCConsumerKey:       getEnv("WC_CONSUMER_KEY", ""),
		WCConsumerSecret:    getEnv("WC_CONSUMER_SECRET", ""),
		WCRequestsPerSecond: getEnvAsInt("WC_REQUESTS_PER_SECOND", 5),
		CatalogSyncInterval: getEnvAsDuration("CATALOG_SYNC_INTERVAL", 6*time.Hour),
		SyncOrdersWindow:    getEnvAsDuration("SYNC_ORDERS_WINDOW", 90*24*time.Hour),
		SiteName:            getEnv("SITE_NAME", "My Store"),
		SiteURL:             strings.TrimRight(getEnv("SITE_URL", "http://localhost:8080"), "/"),
		SiteDescription:     getEnv("SITE_DESCRIPTION", ""),
		Currency:            getEnv("CURRENCY", "USD"),
		CacheBackend:        getEnv("CACHE_BACKEND", "database"),
		CachePrefix:         getEnv("CACHE_PREFIX", "feedgen"),
		FeedFilePath:        getEnv("FEED_FILE_PATH", ""),
		TaxonomyURL:         getEnv("TAXONOMY_URL", "https://www.google.com/basepages/producttype/taxonomy-with-ids.en-US.txt"),
		ProductFeedInterval: getEnvAsDuration("PRODUCT_FEED_INTERVAL", 12*time.Hour),
		ReviewsFeedInterval: getEnvAsDuration("REVIEWS_FEED_INTERVAL", 24*time.Hour),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if out := SplitList(os.Getenv(key)); len(out) > 0 {
		return out
	}
	return defaultValue
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
