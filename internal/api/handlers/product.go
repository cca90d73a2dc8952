package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"feedgen/internal/catalog"
	"feedgen/internal/connectors/woocommerce"
	"feedgen/internal/logger"
	"feedgen/internal/models"

	"github.com/gin-gonic/gin"
)

// ProductCatalog browses the database mirror.
type ProductCatalog interface {
	ListProducts(ctx context.Context, q catalog.ListQuery) ([]models.Product, int64, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

// CatalogSyncer refreshes the mirror from the live store.
type CatalogSyncer interface {
	Sync(ctx context.Context) (woocommerce.SyncResult, error)
}

type ProductHandler struct {
	catalog ProductCatalog
	syncer  CatalogSyncer
	logger  *logger.Logger
}

// NewProductHandler returns the catalog handler. syncer may be nil when no
// store is configured for the mirror.
func NewProductHandler(catalog ProductCatalog, syncer CatalogSyncer, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		syncer:  syncer,
		logger:  logger,
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	q := catalog.ListQuery{
		Page:   page,
		Limit:  limit,
		Status: c.Query("status"),
		Search: c.Query("search"),
	}.Normalize()

	products, total, err := h.catalog.ListProducts(c.Request.Context(), q)
	if err != nil {
		h.logger.Error("Failed to list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  q.Page,
			"limit": q.Limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.logger.Error("Failed to fetch product %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Sync copies the live store into the mirror and refreshes the feeds.
func (h *ProductHandler) Sync(c *gin.Context) {
	if h.syncer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"success": false, "data": "Catalog sync is not configured."})
		return
	}

	result, err := h.syncer.Sync(c.Request.Context())
	if err != nil {
		h.logger.Error("Catalog sync failed: %v", err)
		status := http.StatusInternalServerError
		data := "Catalog sync failed."
		if errors.Is(err, catalog.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
			data = storeUnavailableMessage
		}
		c.JSON(status, gin.H{"success": false, "data": data})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}
