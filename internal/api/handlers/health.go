package handlers

import (
	"net/http"

	"feedgen/internal/catalog"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	source catalog.Source
}

func NewHealthHandler(source catalog.Source) *HealthHandler {
	return &HealthHandler{source: source}
}

func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.source.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
