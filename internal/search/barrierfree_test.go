package search

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/tripmate/backend/internal/tourapi"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeAccessibility struct {
	mu       sync.Mutex
	records  map[string]map[string]string
	inFlight int32
	peak     int32
	delay    time.Duration
}

func (f *fakeAccessibility) DetailWithTour(ctx context.Context, contentID string) (map[string]string, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[contentID]
	if !ok {
		return nil, errors.New("upstream unavailable")
	}
	return rec, nil
}

func TestScoreAccessibility_FieldQuality(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   int
	}{
		{"empty", map[string]string{}, 0},
		{"placeholder", map[string]string{"parking": "없음", "route": "N/A", "exit": "-"}, 0},
		{"negative phrasing", map[string]string{"parking": "장애인 주차장 없음", "elevator": "이용 불가"}, 0},
		{"positive parking", map[string]string{"parking": "장애인 전용 주차장 있음"}, 25},
		{"partial route", map[string]string{"route": "일부 구간 경사로 가능"}, 13},
		{"presence only", map[string]string{"restroom": "1층 매표소 옆"}, 3},
		{"single rune without keyword", map[string]string{"parking": "유"}, 0},
		{"unscored field", map[string]string{"wheelchair": "대여 가능"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreAccessibility(tt.fields))
		})
	}
}

func TestScoreAccessibility_CappedAt100(t *testing.T) {
	fields := map[string]string{}
	for _, fw := range facilityWeights {
		fields[fw.field] = "완비 및 이용 가능, available"
	}
	score := ScoreAccessibility(fields)
	assert.Equal(t, 100, score)
	assert.GreaterOrEqual(t, score, 0)
}

func TestEnricher_IsolatesFailures(t *testing.T) {
	api := &fakeAccessibility{records: map[string]map[string]string{
		"Y": {"parking": "장애인 주차장 있음", "elevator": "엘리베이터 설치", "helpdog": ""},
	}}
	enricher := NewEnricher(api, semaphore.NewWeighted(DefaultEnrichPoolSize), quietLogger())

	tours := []Tour{
		{TourItem: tourapi.TourItem{ContentID: "X"}},
		{TourItem: tourapi.TourItem{ContentID: "Y"}},
	}
	out := enricher.Enrich(context.Background(), tours, "1")

	require.Len(t, out, 2)
	require.NotNil(t, out[0].Accessibility)
	assert.False(t, out[0].Accessibility.HasInfo)
	assert.Equal(t, 0, out[0].Accessibility.Score)

	require.NotNil(t, out[1].Accessibility)
	assert.True(t, out[1].Accessibility.HasInfo)
	assert.Equal(t, 40, out[1].Accessibility.Score)
	assert.NotContains(t, out[1].Accessibility.Fields, "helpdog")

	assert.Nil(t, tours[0].Accessibility)
}

func TestEnricher_PoolBoundsConcurrency(t *testing.T) {
	api := &fakeAccessibility{records: map[string]map[string]string{}, delay: 20 * time.Millisecond}
	enricher := NewEnricher(api, semaphore.NewWeighted(3), quietLogger())

	tours := make([]Tour, 12)
	for i := range tours {
		tours[i].ContentID = string(rune('a' + i))
	}
	out := enricher.Enrich(context.Background(), tours, "")

	assert.Len(t, out, 12)
	assert.LessOrEqual(t, atomic.LoadInt32(&api.peak), int32(3))
}

func TestEnricher_CompletesAfterCallerCancels(t *testing.T) {
	api := &fakeAccessibility{records: map[string]map[string]string{
		"Y": {"parking": "있음"},
	}, delay: 10 * time.Millisecond}
	enricher := NewEnricher(api, nil, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := enricher.Enrich(ctx, []Tour{{TourItem: tourapi.TourItem{ContentID: "Y"}}}, "")
	assert.True(t, out[0].Accessibility.HasInfo)
}
