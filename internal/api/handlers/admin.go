package handlers

import (
	"context"
	"errors"
	"net/http"

	"feedgen/internal/catalog"
	"feedgen/internal/logger"
	"feedgen/internal/service"
	"feedgen/internal/taxonomy"

	"github.com/gin-gonic/gin"
)

// CategorySearcher looks up Google product categories.
type CategorySearcher interface {
	Search(ctx context.Context, query string) []taxonomy.Category
}

type AdminHandler struct {
	feeds      FeedService
	categories CategorySearcher
	logger     *logger.Logger
}

func NewAdminHandler(feeds FeedService, categories CategorySearcher, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		feeds:      feeds,
		categories: categories,
		logger:     logger,
	}
}

// Generate rebuilds the feed named by :kind. The csv kind downloads the export.
func (h *AdminHandler) Generate(c *gin.Context) {
	var (
		err     error
		message string
	)

	switch c.Param("kind") {
	case service.KindProduct:
		_, err = h.feeds.RegenerateProductFeed(c.Request.Context())
		message = "Product feed generated successfully."
	case service.KindReviews:
		_, err = h.feeds.RegenerateReviewsFeed(c.Request.Context())
		message = "Reviews feed generated successfully."
	case service.KindCSV:
		writeCSV(c, h.feeds, h.logger)
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "data": "Invalid action."})
		return
	}

	if err != nil {
		h.logger.Error("Failed to generate %s feed: %v", c.Param("kind"), err)
		status := http.StatusInternalServerError
		data := "Failed to generate feed."
		if errors.Is(err, catalog.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
			data = storeUnavailableMessage
		}
		c.JSON(status, gin.H{"success": false, "data": data})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": message})
}

// ClearCache drops both cached feeds and the on-disk snapshot.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	if err := h.feeds.Deactivate(c.Request.Context()); err != nil {
		h.logger.Error("Failed to clear feed cache: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "data": "Failed to clear feed cache."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": "Feed cache cleared."})
}

// GoogleCategories answers select2 autocomplete lookups.
func (h *AdminHandler) GoogleCategories(c *gin.Context) {
	results := h.categories.Search(c.Request.Context(), c.Query("q"))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": results})
}
