package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pvcflow/internal/infrastructure/pdf"
	"pvcflow/internal/infrastructure/storage/postgres"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	pool     *postgres.Pool
	renderer *pdf.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(pool *postgres.Pool, renderer *pdf.Client) *HealthHandler {
	return &HealthHandler{pool: pool, renderer: renderer}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{
		"database":     "healthy",
		"pdf_renderer": "healthy",
	}
	healthy := true

	if err := h.pool.Ping(c.Request.Context()); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		healthy = false
	}

	// PDF rendering degrades gracefully: certificate export fails with a
	// clear error, everything else keeps working. Still reported here so
	// operators see it.
	if h.renderer == nil {
		checks["pdf_renderer"] = "disabled"
	} else if err := h.renderer.Ping(c.Request.Context()); err != nil {
		checks["pdf_renderer"] = "unhealthy: " + err.Error()
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": checks,
	})
}
