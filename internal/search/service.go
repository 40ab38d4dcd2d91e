package search

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tripmate/backend/internal/category"
	"github.com/tripmate/backend/internal/metrics"
	"github.com/tripmate/backend/internal/tourapi"
)

const (
	MessageFound    = "관광지를 찾았습니다"
	MessageFallback = "조건에 맞는 관광지가 없어 지역 전체 결과를 보여드립니다"
	MessageNotFound = "조건에 맞는 관광지를 찾지 못했습니다"

	DefaultPlaceholderImage = "https://tripmate.example/static/no-image.png"
)

// ResultCache stores finished search results. Implementations serialize values.
type ResultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Options struct {
	Concurrency        int
	RowsPerCombination int
	CacheTTL           time.Duration
	PlaceholderImage   string
}

// FilterService answers filter searches end to end.
type FilterService struct {
	api         ListSource
	mapper      *category.Mapper
	executor    *Executor
	enricher    *Enricher
	cache       ResultCache
	cacheTTL    time.Duration
	placeholder string
	logger      *logrus.Logger
}

// NewFilterService wires the search pipeline. cache may be nil.
func NewFilterService(api ListSource, mapper *category.Mapper, enricher *Enricher, cache ResultCache, opts Options, logger *logrus.Logger) *FilterService {
	placeholder := opts.PlaceholderImage
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	return &FilterService{
		api:         api,
		mapper:      mapper,
		executor:    NewExecutor(api, opts.Concurrency, opts.RowsPerCombination, logger),
		enricher:    enricher,
		cache:       cache,
		cacheTTL:    opts.CacheTTL,
		placeholder: placeholder,
		logger:      logger,
	}
}

// Search parses raw query parameters and runs the filter search.
func (s *FilterService) Search(ctx context.Context, params map[string]string) (*Result, Criteria) {
	criteria := ParseCriteria(params, s.mapper)
	return s.SearchCriteria(ctx, criteria), criteria
}

// SearchCriteria runs the filter search for already normalized criteria.
func (s *FilterService) SearchCriteria(ctx context.Context, criteria Criteria) *Result {
	key := CacheKey(criteria)
	if s.cache != nil && s.cacheTTL > 0 {
		var cached Result
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to read filter cache")
		}
		if hit {
			metrics.CacheLookups.WithLabelValues("filter", "hit").Inc()
			metrics.FilterSearches.WithLabelValues("cache").Inc()
			return &cached
		}
		metrics.CacheLookups.WithLabelValues("filter", "miss").Inc()
	}

	result := s.run(ctx, criteria)

	if s.cache != nil && s.cacheTTL > 0 && result.Success {
		if err := s.cache.Set(ctx, key, result, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to write filter cache")
		}
	}
	return result
}

func (s *FilterService) run(ctx context.Context, criteria Criteria) *Result {
	start := time.Now()
	sel := NewSelection(criteria, s.mapper)
	combos := GenerateCombinations(criteria, s.mapper)

	lists, statuses := s.executor.Run(ctx, combos, criteria.PageNo)

	result := &Result{
		Data:         []TourView{},
		APICalls:     len(combos),
		Combinations: statuses,
		BarrierFree:  criteria.BarrierFree,
	}
	for _, st := range statuses {
		if st.OK {
			result.SuccessfulCalls++
		}
	}
	for _, list := range lists {
		result.RawCount += len(list)
	}

	merged := Dedupe(lists)
	if len(merged) == 0 {
		result.Fallback = true
		result.APICalls++
		items, err := s.fallback(ctx, criteria)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"area_code": criteria.AreaCode,
				"error":     err.Error(),
			}).Warn("Fallback search failed")
		} else {
			result.SuccessfulCalls++
			result.RawCount += len(items)
			merged = Dedupe([][]tourapi.TourItem{items})
		}
	}

	result.TotalCount = len(merged)
	if len(merged) == 0 {
		result.Message = MessageNotFound
		metrics.FilterSearches.WithLabelValues("empty").Inc()
		return result
	}

	tours := Balance(ScoreAll(merged, sel), criteria.NumOfRows, sel)
	if criteria.BarrierFree && s.enricher != nil {
		tours = s.enricher.Enrich(ctx, tours, criteria.AreaCode)
	}

	result.Success = true
	result.Message = MessageFound
	source := "combinations"
	if result.Fallback {
		result.Message = MessageFallback
		source = "fallback"
	}
	metrics.FilterSearches.WithLabelValues(source).Inc()

	for _, t := range tours {
		result.Data = append(result.Data, s.View(t))
	}

	s.logger.WithFields(logrus.Fields{
		"combinations": len(combos),
		"successful":   result.SuccessfulCalls,
		"raw_count":    result.RawCount,
		"unique_count": result.TotalCount,
		"returned":     len(result.Data),
		"fallback":     result.Fallback,
		"duration":     time.Since(start),
	}).Info("Filter search completed")

	return result
}

// fallback drops every category constraint and keeps only the region.
func (s *FilterService) fallback(ctx context.Context, criteria Criteria) ([]tourapi.TourItem, error) {
	page, err := s.api.AreaBasedList(ctx, tourapi.ListQuery{
		AreaCode:      criteria.AreaCode,
		SigunguCode:   criteria.SigunguCode,
		ContentTypeID: tourapi.ContentTypeAttraction,
		NumOfRows:     MaxNumOfRows,
		PageNo:        criteria.PageNo,
		Arrange:       "Q",
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// View shapes one hit for the API.
func (s *FilterService) View(t Tour) TourView {
	v := TourView{
		TourItem:       t.TourItem,
		RelevanceScore: t.Score,
		OptimizedImage: OptimizeImageURL(t.FirstImage, t.FirstImage2, s.placeholder),
		CategoryName:   s.mapper.DisplayName(t.Cat1, t.Cat2, t.Cat3),
		AreaName:       s.mapper.AreaName(t.AreaCode),
	}
	if t.Accessibility != nil {
		v.AccessibilityScore = t.Accessibility.Score
		v.HasBarrierFreeInfo = t.Accessibility.HasInfo
		v.Accessibility = t.Accessibility.Fields
	}
	return v
}

// OptimizeImageURL picks the first available image and upgrades it to an absolute
// https URL.
func OptimizeImageURL(primary, secondary, placeholder string) string {
	img := strings.TrimSpace(primary)
	if img == "" {
		img = strings.TrimSpace(secondary)
	}
	switch {
	case img == "":
		return placeholder
	case strings.HasPrefix(img, "//"):
		return "https:" + img
	case strings.HasPrefix(img, "http://"):
		return "https://" + strings.TrimPrefix(img, "http://")
	case strings.HasPrefix(img, "https://"):
		return img
	default:
		return placeholder
	}
}

// CacheKey identifies criteria independently of the order names were selected in.
func CacheKey(c Criteria) string {
	norm := c
	norm.Themes = sortedCopy(c.Themes)
	norm.Activities = sortedCopy(c.Activities)
	norm.Places = sortedCopy(c.Places)

	data, _ := json.Marshal(norm)
	sum := md5.Sum(data)
	return "filter:" + hex.EncodeToString(sum[:])
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
