package health

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/internal/tourapi"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Pinger is implemented by database.Manager.
type Pinger interface {
	PingDatabase(ctx context.Context) error
	PingRedis(ctx context.Context) error
}

// TourAPIProbe is the cheapest tourism API call, used as a liveness probe.
type TourAPIProbe interface {
	AreaCodes(ctx context.Context, areaCode string) ([]tourapi.RegionCode, error)
}

// HealthCache is implemented by database.Cache.
type HealthCache interface {
	CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error
	GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, bool, error)
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	pinger     Pinger
	tourAPI    TourAPIProbe
	cache      HealthCache
	healthRepo models.SystemHealthRepository
	logger     *logrus.Logger
	timeout    time.Duration
}

func NewHealthChecker(pinger Pinger, tourAPI TourAPIProbe, cache HealthCache, healthRepo models.SystemHealthRepository, logger *logrus.Logger) *HealthChecker {
	return &HealthChecker{
		pinger:     pinger,
		tourAPI:    tourAPI,
		cache:      cache,
		healthRepo: healthRepo,
		logger:     logger,
		timeout:    5 * time.Second,
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
	LastChecked  string `json:"last_checked"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
	Uptime   string          `json:"uptime"`
}

// CheckPostgreSQL checks PostgreSQL database health
func (h *HealthChecker) CheckPostgreSQL(ctx context.Context) ServiceHealth {
	return h.check(ctx, "postgresql", StatusUnhealthy, h.pinger.PingDatabase)
}

// CheckRedis checks Redis health
func (h *HealthChecker) CheckRedis(ctx context.Context) ServiceHealth {
	return h.check(ctx, "redis", StatusUnhealthy, h.pinger.PingRedis)
}

// CheckTourAPI checks the tourism API. Searches fall back to empty results when it is
// down, so a failure only degrades the service.
func (h *HealthChecker) CheckTourAPI(ctx context.Context) ServiceHealth {
	return h.check(ctx, "tourapi", StatusDegraded, func(ctx context.Context) error {
		_, err := h.tourAPI.AreaCodes(ctx, "")
		return err
	})
}

func (h *HealthChecker) check(ctx context.Context, name, failStatus string, probe func(context.Context) error) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := probe(ctx)
	responseTime := int(time.Since(start).Milliseconds())

	status := StatusHealthy
	errorMsg := ""
	if err != nil {
		status = failStatus
		errorMsg = err.Error()
		h.logger.WithError(err).WithField("service", name).Error("Health check failed")
	}

	if h.healthRepo != nil {
		if err := h.healthRepo.UpdateServiceHealth(name, status, responseTime, errorMsg); err != nil {
			h.logger.WithError(err).WithField("service", name).Warn("Failed to record health status")
		}
	}

	return ServiceHealth{
		Name:         name,
		Status:       status,
		ResponseTime: responseTime,
		Error:        errorMsg,
		LastChecked:  time.Now().Format(time.RFC3339),
	}
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	services := []ServiceHealth{
		h.CheckPostgreSQL(ctx),
		h.CheckRedis(ctx),
		h.CheckTourAPI(ctx),
	}

	return OverallHealth{
		Status:   aggregate(services),
		Services: services,
		Uptime:   h.getUptime(),
	}
}

func aggregate(services []ServiceHealth) string {
	overallStatus := StatusHealthy
	for _, service := range services {
		if service.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
		if service.Status == StatusDegraded {
			overallStatus = StatusDegraded
		}
	}
	return overallStatus
}

// CheckCached returns cached health status if available
func (h *HealthChecker) CheckCached(ctx context.Context) (*OverallHealth, bool, error) {
	cachedHealth, ok, err := h.cache.GetCachedSystemHealth(ctx)
	if err != nil || !ok {
		return nil, false, err
	}

	services := make([]ServiceHealth, len(cachedHealth))
	for i, health := range cachedHealth {
		services[i] = ServiceHealth{
			Name:         health.ServiceName,
			Status:       health.Status,
			ResponseTime: health.ResponseTimeMs,
			Error:        health.ErrorMessage,
			LastChecked:  health.CheckedAt.Format(time.RFC3339),
		}
	}

	return &OverallHealth{
		Status:   aggregate(services),
		Services: services,
		Uptime:   h.getUptime(),
	}, true, nil
}

var startTime = time.Now()

func (h *HealthChecker) getUptime() string {
	return time.Since(startTime).Round(time.Second).String()
}

// Refresh runs every check and caches the outcome for ttl.
func (h *HealthChecker) Refresh(ctx context.Context, ttl time.Duration) OverallHealth {
	health := h.CheckAll(ctx)

	healthModels := make([]models.SystemHealth, len(health.Services))
	for i, service := range health.Services {
		checkedAt, _ := time.Parse(time.RFC3339, service.LastChecked)
		healthModels[i] = models.SystemHealth{
			ServiceName:    service.Name,
			Status:         service.Status,
			ResponseTimeMs: service.ResponseTime,
			ErrorMessage:   service.Error,
			CheckedAt:      checkedAt,
		}
	}

	if err := h.cache.CacheSystemHealth(ctx, healthModels, ttl); err != nil {
		h.logger.WithError(err).Error("Failed to cache health status")
	}
	return health
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.Refresh(ctx, 2*interval)
			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}
