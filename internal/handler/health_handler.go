package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shipmerge/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	registry port.CompanyRegistry
}

// NewHealthHandler creates a new HealthHandler. registry is nil when
// enrichment is disabled, and readiness then does not depend on the database.
func NewHealthHandler(registry port.CompanyRegistry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.registry != nil {
		if err := h.registry.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "company registry not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
