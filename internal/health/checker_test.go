package health

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/internal/tourapi"
)

type fakePinger struct {
	dbErr    error
	redisErr error
}

func (f fakePinger) PingDatabase(ctx context.Context) error { return f.dbErr }
func (f fakePinger) PingRedis(ctx context.Context) error    { return f.redisErr }

type fakeProbe struct{ err error }

func (f fakeProbe) AreaCodes(ctx context.Context, areaCode string) ([]tourapi.RegionCode, error) {
	return nil, f.err
}

type memoryHealthCache struct {
	health []models.SystemHealth
}

func (m *memoryHealthCache) CacheSystemHealth(ctx context.Context, health []models.SystemHealth, expiration time.Duration) error {
	m.health = health
	return nil
}

func (m *memoryHealthCache) GetCachedSystemHealth(ctx context.Context) ([]models.SystemHealth, bool, error) {
	return m.health, m.health != nil, nil
}

type recordingHealthRepo struct {
	models.SystemHealthRepository
	recorded map[string]string
}

func (r *recordingHealthRepo) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	r.recorded[serviceName] = status
	return nil
}

func newChecker(p Pinger, probe TourAPIProbe, repo *recordingHealthRepo) (*HealthChecker, *memoryHealthCache) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cache := &memoryHealthCache{}
	return NewHealthChecker(p, probe, cache, repo, logger), cache
}

func TestCheckAll_Healthy(t *testing.T) {
	repo := &recordingHealthRepo{recorded: map[string]string{}}
	checker, _ := newChecker(fakePinger{}, fakeProbe{}, repo)

	health := checker.CheckAll(context.Background())

	assert.Equal(t, StatusHealthy, health.Status)
	require.Len(t, health.Services, 3)
	assert.Equal(t, map[string]string{
		"postgresql": StatusHealthy,
		"redis":      StatusHealthy,
		"tourapi":    StatusHealthy,
	}, repo.recorded)
}

func TestCheckAll_TourAPIFailureDegrades(t *testing.T) {
	repo := &recordingHealthRepo{recorded: map[string]string{}}
	checker, _ := newChecker(fakePinger{}, fakeProbe{err: errors.New("timeout")}, repo)

	health := checker.CheckAll(context.Background())

	assert.Equal(t, StatusDegraded, health.Status)
	assert.Equal(t, "timeout", health.Services[2].Error)
}

func TestCheckAll_DatabaseFailureIsUnhealthy(t *testing.T) {
	repo := &recordingHealthRepo{recorded: map[string]string{}}
	checker, _ := newChecker(fakePinger{dbErr: errors.New("refused")}, fakeProbe{err: errors.New("timeout")}, repo)

	assert.Equal(t, StatusUnhealthy, checker.CheckAll(context.Background()).Status)
}

func TestRefresh_CachesResult(t *testing.T) {
	repo := &recordingHealthRepo{recorded: map[string]string{}}
	checker, _ := newChecker(fakePinger{redisErr: errors.New("down")}, fakeProbe{}, repo)

	_, ok, err := checker.CheckCached(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	checker.Refresh(context.Background(), time.Minute)

	cached, ok, err := checker.CheckCached(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusUnhealthy, cached.Status)
	assert.Len(t, cached.Services, 3)
}
