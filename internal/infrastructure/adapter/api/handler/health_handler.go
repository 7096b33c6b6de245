package handler

import (
	"context"
	"net/http"

	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	Check(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probe
type HealthHandler struct {
	checker HealthChecker
	logger  coreport.Logger
}

// NewHealthHandler creates a health handler; a nil checker always reports healthy
func NewHealthHandler(checker HealthChecker, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{checker: checker, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.checker != nil {
		if err := h.checker.Check(c.Request.Context()); err != nil {
			h.logger.Warn("Health check failed", map[string]any{"error": err.Error()})
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
