package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Check
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	res := gin.H{"status": "healthy"}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			slog.Warn("health check failed", "service", name, "error", err)
			res[name] = "disconnected"
			status = http.StatusServiceUnavailable
			res["status"] = "unhealthy"
			continue
		}
		res[name] = "connected"
	}

	c.JSON(status, res)
}
