package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"feedgen/internal/api/handlers"
	"feedgen/internal/api/middleware"
	"feedgen/internal/catalog"
	"feedgen/internal/config"
	"feedgen/internal/events"
	"feedgen/internal/logger"
	"feedgen/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Dependencies are the services the HTTP surface is built on.
type Dependencies struct {
	Feeds      handlers.FeedService
	Categories handlers.CategorySearcher
	Source     catalog.Source
	Bus        *events.Bus
	Catalog    handlers.ProductCatalog
	Syncer     handlers.CatalogSyncer
}

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, deps Dependencies) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Initialize handlers
	feedHandler := handlers.NewFeedHandler(deps.Feeds, logger)
	adminHandler := handlers.NewAdminHandler(deps.Feeds, deps.Categories, logger)
	webhookHandler := handlers.NewWebhookHandler(deps.Bus, cfg.WebhookSecret, logger)
	healthHandler := handlers.NewHealthHandler(deps.Source)
	productHandler := handlers.NewProductHandler(deps.Catalog, deps.Syncer, logger)

	// Public feeds
	router.GET("/google-feed", feedHandler.ProductFeed)
	router.GET("/google-reviews-feed", feedHandler.ReviewsFeed)
	router.GET("/csv-export", feedHandler.CSVExport)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Admin
		admin := v1.Group("")
		admin.Use(middleware.RequireAPIKey(cfg.AdminAPIKey))
		{
			admin.POST("/feeds/:kind/generate", adminHandler.Generate)
			admin.DELETE("/feeds/cache", adminHandler.ClearCache)
			admin.GET("/google-categories", adminHandler.GoogleCategories)

			admin.GET("/products", productHandler.List)
			admin.GET("/products/:id", productHandler.Get)
			admin.POST("/catalog/sync", productHandler.Sync)
		}

		// Webhooks
		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/woocommerce", webhookHandler.WooCommerce)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}
