package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wellfield/rigops/internal/analytics"
)

const readinessTimeout = 2 * time.Second

// HealthHandler reports liveness and readiness. Readiness pings the record
// source because every endpoint is useless without it.
type HealthHandler struct {
	source  analytics.RecordSource
	service string
	version string
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(source analytics.RecordSource, service, version string) *HealthHandler {
	return &HealthHandler{source: source, service: service, version: version}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.service,
		"version": h.version,
	})
}

// Ready handles GET /ready.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.source.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "record store unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
