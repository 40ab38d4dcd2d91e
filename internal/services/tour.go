package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tripmate/backend/internal/category"
	"github.com/tripmate/backend/internal/content"
	"github.com/tripmate/backend/internal/database"
	"github.com/tripmate/backend/internal/metrics"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/internal/search"
	"github.com/tripmate/backend/internal/tourapi"
)

var contentIDPattern = regexp.MustCompile(`^\d{1,12}$`)

// TourAPI is the part of the tourism API client the tour service calls directly.
type TourAPI interface {
	SearchKeyword(ctx context.Context, keyword string, q tourapi.ListQuery) (*tourapi.Page, error)
	DetailCommonWithRetry(ctx context.Context, contentID string) (*tourapi.TourDetail, error)
	AreaCodesWithRetry(ctx context.Context, areaCode string) ([]tourapi.RegionCode, error)
}

// TourCache is implemented by database.Cache.
type TourCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	CachePopularKeywords(ctx context.Context, keywords []models.PopularKeyword, expiration time.Duration) error
	GetCachedPopularKeywords(ctx context.Context) ([]models.PopularKeyword, bool, error)
}

type TourOptions struct {
	DetailCacheTTL   time.Duration
	KeywordCacheTTL  time.Duration
	PlaceholderImage string
}

// SearchMeta describes who ran a search, for the search log.
type SearchMeta struct {
	UserID    *uint
	IPAddress string
}

// KeywordResult is one page of keyword search hits.
type KeywordResult struct {
	Items      []search.TourView `json:"items"`
	TotalCount int               `json:"totalCount"`
	PageNo     int               `json:"pageNo"`
	NumOfRows  int               `json:"numOfRows"`
}

// TourDetailView is the outbound detail of one attraction.
type TourDetailView struct {
	tourapi.TourDetail
	OptimizedImage string `json:"optimizedImage"`
	CategoryName   string `json:"categoryName"`
	AreaName       string `json:"areaName"`
}

type TourService struct {
	filter    *search.FilterService
	enricher  *search.Enricher
	api       TourAPI
	mapper    *category.Mapper
	repos     TourRepositories
	cache     TourCache
	processor *content.Processor
	options   TourOptions
	logger    *logrus.Logger

	background sync.WaitGroup
}

type TourRepositories struct {
	SearchLog      models.SearchLogRepository
	PopularKeyword models.PopularKeywordRepository
	RegionCode     models.RegionCodeRepository
}

func NewTourService(
	filter *search.FilterService,
	enricher *search.Enricher,
	api TourAPI,
	mapper *category.Mapper,
	repos TourRepositories,
	cache TourCache,
	processor *content.Processor,
	options TourOptions,
	logger *logrus.Logger,
) *TourService {
	if options.PlaceholderImage == "" {
		options.PlaceholderImage = search.DefaultPlaceholderImage
	}
	if options.KeywordCacheTTL == 0 {
		options.KeywordCacheTTL = 5 * time.Minute
	}
	return &TourService{
		filter:    filter,
		enricher:  enricher,
		api:       api,
		mapper:    mapper,
		repos:     repos,
		cache:     cache,
		processor: processor,
		options:   options,
		logger:    logger,
	}
}

// Filter runs the multi-filter search and records it in the search log in the
// background.
func (s *TourService) Filter(ctx context.Context, params map[string]string, meta SearchMeta) *search.Result {
	start := time.Now()
	result, criteria := s.filter.Search(ctx, params)

	entry := &models.SearchLog{
		Themes:         criteria.Themes,
		Activities:     criteria.Activities,
		Places:         criteria.Places,
		AreaCode:       criteria.AreaCode,
		SigunguCode:    criteria.SigunguCode,
		BarrierFree:    criteria.BarrierFree,
		ResultCount:    len(result.Data),
		Fallback:       result.Fallback,
		APICalls:       result.APICalls,
		ResponseTimeMs: int(time.Since(start).Milliseconds()),
		UserID:         meta.UserID,
		IPAddress:      meta.IPAddress,
	}
	s.goBackground(func() {
		if err := s.repos.SearchLog.Create(entry); err != nil {
			s.logger.WithError(err).Warn("Failed to record search log")
		}
	})

	return result
}

// Keyword runs a free-text search and counts the keyword for suggestions.
func (s *TourService) Keyword(ctx context.Context, keyword, areaCode string, numOfRows, pageNo int) (*KeywordResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("keyword: %w", ErrInvalidInput)
	}
	if numOfRows < search.MinNumOfRows || numOfRows > search.MaxNumOfRows {
		numOfRows = search.DefaultNumOfRows
	}
	if pageNo < 1 {
		pageNo = 1
	}

	page, err := s.api.SearchKeyword(ctx, keyword, tourapi.ListQuery{
		AreaCode:  areaCode,
		NumOfRows: numOfRows,
		PageNo:    pageNo,
		Arrange:   "Q",
	})
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	normalized := strings.ToLower(keyword)
	s.goBackground(func() {
		if err := s.repos.PopularKeyword.IncrementCount(normalized); err != nil {
			s.logger.WithError(err).WithField("keyword", normalized).Warn("Failed to count keyword")
		}
	})

	result := &KeywordResult{
		Items:      make([]search.TourView, 0, len(page.Items)),
		TotalCount: page.TotalCount,
		PageNo:     pageNo,
		NumOfRows:  numOfRows,
	}
	for _, item := range page.Items {
		result.Items = append(result.Items, s.filter.View(search.Tour{TourItem: item}))
	}
	return result, nil
}

// PopularKeywords returns the most searched keywords, cached briefly in Redis.
func (s *TourService) PopularKeywords(ctx context.Context, limit int) ([]models.PopularKeyword, error) {
	cached, ok, err := s.cache.GetCachedPopularKeywords(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read popular keywords cache")
	}
	if ok && len(cached) >= limit {
		metrics.CacheLookups.WithLabelValues("keywords", "hit").Inc()
		return cached[:limit], nil
	}
	metrics.CacheLookups.WithLabelValues("keywords", "miss").Inc()

	keywords, err := s.repos.PopularKeyword.GetTop(limit)
	if err != nil {
		return nil, translate(err, "load popular keywords")
	}
	if err := s.cache.CachePopularKeywords(ctx, keywords, s.options.KeywordCacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache popular keywords")
	}
	return keywords, nil
}

// Suggestions returns popular keywords containing q, or the top keywords when q is empty.
func (s *TourService) Suggestions(ctx context.Context, q string, limit int) ([]string, error) {
	q = strings.ToLower(strings.TrimSpace(q))

	var (
		keywords []models.PopularKeyword
		err      error
	)
	if q == "" {
		keywords, err = s.PopularKeywords(ctx, limit)
	} else {
		keywords, err = s.repos.PopularKeyword.Suggest(q, limit)
		err = translate(err, "suggest keywords")
	}
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		out = append(out, k.Keyword)
	}
	return out, nil
}

// Detail loads the common detail of an attraction with its overview reduced to text.
func (s *TourService) Detail(ctx context.Context, contentID string) (*TourDetailView, error) {
	if !contentIDPattern.MatchString(contentID) {
		return nil, fmt.Errorf("content id: %w", ErrInvalidInput)
	}

	key := fmt.Sprintf(database.TourDetailKey, contentID)
	var cached TourDetailView
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.logger.WithError(err).Warn("Failed to read detail cache")
	} else if hit {
		metrics.CacheLookups.WithLabelValues("detail", "hit").Inc()
		return &cached, nil
	}
	metrics.CacheLookups.WithLabelValues("detail", "miss").Inc()

	detail, err := s.api.DetailCommonWithRetry(ctx, contentID)
	if err != nil {
		if errors.Is(err, tourapi.ErrNoData) {
			return nil, fmt.Errorf("tour %s: %w", contentID, ErrNotFound)
		}
		return nil, fmt.Errorf("detail lookup failed: %w", err)
	}

	detail.Overview = s.processor.CleanOverview(detail.Overview)
	detail.Homepage = s.processor.PlainText(detail.Homepage)
	view := &TourDetailView{
		TourDetail:     *detail,
		OptimizedImage: search.OptimizeImageURL(detail.FirstImage, detail.FirstImage2, s.options.PlaceholderImage),
		CategoryName:   s.mapper.DisplayName(detail.Cat1, detail.Cat2, detail.Cat3),
		AreaName:       s.mapper.AreaName(detail.AreaCode),
	}

	if s.options.DetailCacheTTL > 0 {
		if err := s.cache.Set(ctx, key, view, s.options.DetailCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to write detail cache")
		}
	}
	return view, nil
}

// BarrierFree returns the accessibility summary of one attraction.
func (s *TourService) BarrierFree(ctx context.Context, contentID string) (*search.AccessibilityInfo, error) {
	if !contentIDPattern.MatchString(contentID) {
		return nil, fmt.Errorf("content id: %w", ErrInvalidInput)
	}

	key := fmt.Sprintf(database.BarrierFreeKey, contentID)
	var cached search.AccessibilityInfo
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		metrics.CacheLookups.WithLabelValues("barrierfree", "hit").Inc()
		return &cached, nil
	}
	metrics.CacheLookups.WithLabelValues("barrierfree", "miss").Inc()

	info := s.enricher.Lookup(ctx, contentID)
	if info.HasInfo && s.options.DetailCacheTTL > 0 {
		if err := s.cache.Set(ctx, key, info, s.options.DetailCacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to write barrier-free cache")
		}
	}
	return &info, nil
}

func (s *TourService) Areas() []category.Area {
	return s.mapper.Areas()
}

// Sigungu lists the district codes of an area. Codes come from the region_codes
// table and are fetched from the tourism API on first use.
func (s *TourService) Sigungu(ctx context.Context, areaCode string) ([]models.RegionCode, error) {
	if s.mapper.AreaName(areaCode) == "" {
		return nil, fmt.Errorf("area %q: %w", areaCode, ErrNotFound)
	}

	codes, err := s.repos.RegionCode.ListByArea(areaCode)
	if err != nil {
		return nil, translate(err, "list region codes")
	}
	if len(codes) > 0 {
		return codes, nil
	}

	fetched, err := s.api.AreaCodesWithRetry(ctx, areaCode)
	if err != nil {
		return nil, fmt.Errorf("region code lookup failed: %w", err)
	}

	codes = RegionCodesFromAPI(areaCode, fetched)
	if len(codes) > 0 {
		if err := s.repos.RegionCode.Upsert(codes); err != nil {
			s.logger.WithError(err).WithField("area_code", areaCode).Warn("Failed to store region codes")
		}
	}
	return codes, nil
}

// RegionCodesFromAPI converts areaCode entries into rows of the region_codes table.
func RegionCodesFromAPI(areaCode string, fetched []tourapi.RegionCode) []models.RegionCode {
	codes := make([]models.RegionCode, 0, len(fetched))
	for _, rc := range fetched {
		if rc.Code == "" {
			continue
		}
		codes = append(codes, models.RegionCode{
			AreaCode:    areaCode,
			SigunguCode: rc.Code,
			Name:        rc.Name,
			SortOrder:   rc.Rnum,
		})
	}
	return codes
}

func (s *TourService) goBackground(fn func()) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		fn()
	}()
}

// Wait blocks until background writes have finished.
func (s *TourService) Wait() {
	s.background.Wait()
}
