package handlers

import (
	"net/http"

	"feedgen/internal/connectors/woocommerce"
	"feedgen/internal/events"
	"feedgen/internal/logger"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	bus    *events.Bus
	secret string
	logger *logger.Logger
}

func NewWebhookHandler(bus *events.Bus, secret string, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		bus:    bus,
		secret: secret,
		logger: logger,
	}
}

// WooCommerce handles WooCommerce webhook deliveries.
func (h *WebhookHandler) WooCommerce(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	topic := c.GetHeader(woocommerce.HeaderTopic)
	if topic == "" {
		// WooCommerce sends an unsigned form-encoded ping when a webhook is saved.
		c.JSON(http.StatusOK, gin.H{"message": "Webhook received"})
		return
	}

	if err := woocommerce.VerifySignature(payload, c.GetHeader(woocommerce.HeaderSignature), h.secret); err != nil {
		h.logger.Error("Rejected webhook %s: %v", topic, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	handled, err := woocommerce.HandleWebhook(c.Request.Context(), h.bus, topic, payload)
	if err != nil {
		h.logger.Error("Failed to process webhook %s: %v", topic, err)
		if !handled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process webhook"})
		return
	}
	if !handled {
		h.logger.Debug("Unhandled webhook topic: %s", topic)
		c.JSON(http.StatusOK, gin.H{"message": "Webhook received but not processed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Webhook processed successfully"})
}
