package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"feedgen/internal/catalog"
	"feedgen/internal/feed"
	"feedgen/internal/logger"

	"github.com/gin-gonic/gin"
)

const storeUnavailableMessage = "WooCommerce is not active."

// FeedService is the feed surface the HTTP handlers depend on.
type FeedService interface {
	ProductFeed(ctx context.Context) (string, error)
	ReviewsFeed(ctx context.Context) (string, error)
	ExportCSV(ctx context.Context, w io.Writer) error
	RegenerateProductFeed(ctx context.Context) (string, error)
	RegenerateReviewsFeed(ctx context.Context) (string, error)
	Deactivate(ctx context.Context) error
}

type FeedHandler struct {
	feeds  FeedService
	logger *logger.Logger
}

func NewFeedHandler(feeds FeedService, logger *logger.Logger) *FeedHandler {
	return &FeedHandler{
		feeds:  feeds,
		logger: logger,
	}
}

// ProductFeed serves the Google Merchant product feed.
func (h *FeedHandler) ProductFeed(c *gin.Context) {
	content, err := h.feeds.ProductFeed(c.Request.Context())
	h.writeFeed(c, "product", content, err)
}

// ReviewsFeed serves the Google product reviews feed.
func (h *FeedHandler) ReviewsFeed(c *gin.Context) {
	content, err := h.feeds.ReviewsFeed(c.Request.Context())
	h.writeFeed(c, "reviews", content, err)
}

// CSVExport streams the CSV export as an attachment.
func (h *FeedHandler) CSVExport(c *gin.Context) {
	writeCSV(c, h.feeds, h.logger)
}

func (h *FeedHandler) writeFeed(c *gin.Context, kind, content string, err error) {
	if err != nil {
		status := http.StatusInternalServerError
		message := "Failed to generate feed."
		if errors.Is(err, catalog.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
			message = storeUnavailableMessage
		}
		h.logger.Error("Failed to serve %s feed: %v", kind, err)
		writeXMLError(c, status, message)
		return
	}
	c.Data(http.StatusOK, feed.ContentTypeXML, []byte(content))
}

func writeXMLError(c *gin.Context, status int, message string) {
	var buf bytes.Buffer
	_ = feed.WriteError(&buf, message)
	c.Data(status, feed.ContentTypeXML, buf.Bytes())
}

// writeCSV buffers the export so a failure can still produce an error status.
func writeCSV(c *gin.Context, feeds FeedService, log *logger.Logger) {
	var buf bytes.Buffer
	if err := feeds.ExportCSV(c.Request.Context(), &buf); err != nil {
		log.Error("Failed to export CSV: %v", err)
		if errors.Is(err, catalog.ErrStoreUnavailable) {
			c.String(http.StatusServiceUnavailable, storeUnavailableMessage)
			return
		}
		c.String(http.StatusInternalServerError, "Failed to generate CSV export.")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+feed.CSVFilename+`"`)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, feed.ContentTypeCSV, buf.Bytes())
}
