package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/health"
)

// HealthChecker is implemented by health.HealthChecker.
type HealthChecker interface {
	CheckCached(ctx context.Context) (*health.OverallHealth, bool, error)
	Refresh(ctx context.Context, ttl time.Duration) health.OverallHealth
}

type HealthHandler struct {
	checker HealthChecker
	ttl     time.Duration
	logger  *logrus.Logger
}

func NewHealthHandler(checker HealthChecker, ttl time.Duration, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		ttl:     ttl,
		logger:  logger,
	}
}

// HandleHealth serves the cached health report, running the checks when none is cached.
// Unhealthy answers 503 so load balancers can act on it.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	ctx := c.Request.Context()

	report, ok, err := h.checker.CheckCached(ctx)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to read cached health")
	}
	if !ok {
		fresh := h.checker.Refresh(ctx, h.ttl)
		report = &fresh
	}

	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
