package search

import (
	"context"
	"math"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// DefaultEnrichPoolSize is the process-wide limit on concurrent accessibility lookups.
const DefaultEnrichPoolSize = 10

// AccessibilitySource is the tourism API operation the enricher needs.
type AccessibilitySource interface {
	DetailWithTour(ctx context.Context, contentID string) (map[string]string, error)
}

// Facility weights of the accessibility score. They sum to 100.
var facilityWeights = []struct {
	field  string
	weight float64
}{
	{"parking", 25},
	{"route", 25},
	{"exit", 20},
	{"elevator", 15},
	{"restroom", 10},
	{"publictransport", 5},
}

var (
	placeholderValues = map[string]bool{
		"없음": true, "none": true, "n/a": true, "na": true, "-": true,
		"해당없음": true, "미제공": true, "정보없음": true, "null": true,
	}
	negativeKeywords = []string{"없음", "불가", "미설치", "미운영"}
	partialKeywords  = []string{"일부", "제한", "limited", "partial"}
	positiveKeywords = []string{"있음", "가능", "구비", "설치", "운영", "제공", "완비", "available", "yes"}
)

// Enricher attaches accessibility information to tours. The pool is shared by every
// request so the total number of lookups in flight stays bounded.
type Enricher struct {
	api    AccessibilitySource
	pool   *semaphore.Weighted
	logger *logrus.Logger
}

func NewEnricher(api AccessibilitySource, pool *semaphore.Weighted, logger *logrus.Logger) *Enricher {
	if pool == nil {
		pool = semaphore.NewWeighted(DefaultEnrichPoolSize)
	}
	return &Enricher{api: api, pool: pool, logger: logger}
}

// Enrich looks up every tour concurrently and waits for all lookups. A failed lookup
// leaves the tour with a zero score and no info. Lookups already issued are not
// cancelled with ctx.
func (e *Enricher) Enrich(ctx context.Context, tours []Tour, areaCode string) []Tour {
	out := make([]Tour, len(tours))
	copy(out, tours)

	detached := context.WithoutCancel(ctx)
	var wg sync.WaitGroup

	for i := range out {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info := e.Lookup(detached, out[i].ContentID)
			if !info.HasInfo {
				e.logger.WithFields(logrus.Fields{
					"content_id": out[i].ContentID,
					"area_code":  areaCode,
				}).Debug("No barrier-free info for tour")
			}
			out[i].Accessibility = &info
		}(i)
	}

	wg.Wait()
	return out
}

// Lookup fetches and scores the accessibility record of one content id.
func (e *Enricher) Lookup(ctx context.Context, contentID string) AccessibilityInfo {
	if err := e.pool.Acquire(ctx, 1); err != nil {
		return AccessibilityInfo{}
	}
	defer e.pool.Release(1)

	fields, err := e.api.DetailWithTour(ctx, contentID)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"content_id": contentID,
			"error":      err.Error(),
		}).Debug("Barrier-free lookup failed")
		return AccessibilityInfo{}
	}

	present := make(map[string]string, len(fields))
	for k, v := range fields {
		if v = strings.TrimSpace(v); v != "" {
			present[k] = v
		}
	}
	if len(present) == 0 {
		return AccessibilityInfo{}
	}

	return AccessibilityInfo{
		Fields:  present,
		Score:   ScoreAccessibility(present),
		HasInfo: true,
	}
}

// ScoreAccessibility weights the scored facility fields by the quality of their text and
// caps the total at 100.
func ScoreAccessibility(fields map[string]string) int {
	total := 0.0
	for _, fw := range facilityWeights {
		total += fw.weight * valueFactor(fields[fw.field])
	}
	if total > 100 {
		total = 100
	}
	return int(math.Round(total))
}

// valueFactor is 1 for a positive statement, 0.5 for partial availability, 0.25 for
// text that says something without a positive keyword and 0 otherwise.
func valueFactor(value string) float64 {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || placeholderValues[v] || containsAny(v, negativeKeywords) {
		return 0
	}

	positive := containsAny(v, positiveKeywords)
	if !positive && utf8.RuneCountInString(v) < 2 {
		return 0
	}

	switch {
	case containsAny(v, partialKeywords):
		return 0.5
	case positive:
		return 1
	default:
		return 0.25
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
