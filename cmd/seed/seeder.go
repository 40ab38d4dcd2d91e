package main

import (
	"net/url"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/debug"
	"github.com/sirupsen/logrus"

	"github.com/tripmate/backend/internal/category"
	"github.com/tripmate/backend/internal/models"
	"github.com/tripmate/backend/internal/services"
	"github.com/tripmate/backend/internal/tourapi"
)

// URLBuilder produces signed request URLs for the tourism API.
type URLBuilder interface {
	BuildURL(endpoint string, params url.Values) string
}

type SeederOptions struct {
	DomainGlob  string
	Parallelism int
	Delay       time.Duration
	Timeout     time.Duration
	Debug       bool
}

type SeedStats struct {
	Areas  int
	Codes  int
	Failed int
}

// RegionSeeder walks every area's areaCode endpoint and stores the returned sigungu
// codes. A nil store only logs what would be written.
type RegionSeeder struct {
	collector *colly.Collector
	builder   URLBuilder
	store     models.RegionCodeRepository
	logger    *logrus.Logger

	mu    sync.Mutex
	stats SeedStats
}

func NewRegionSeeder(builder URLBuilder, store models.RegionCodeRepository, opts SeederOptions, logger *logrus.Logger) *RegionSeeder {
	c := colly.NewCollector(
		colly.UserAgent("tripmate-seeder/1.0"),
		colly.Async(true),
		colly.AllowURLRevisit(),
	)
	if opts.Debug {
		c.SetDebugger(&debug.LogDebugger{})
	}

	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	glob := opts.DomainGlob
	if glob == "" {
		glob = "*"
	}
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  glob,
		Parallelism: opts.Parallelism,
		Delay:       opts.Delay,
	}); err != nil {
		logger.WithError(err).Warn("Invalid crawl limit rule")
	}
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	s := &RegionSeeder{
		collector: c,
		builder:   builder,
		store:     store,
		logger:    logger,
	}
	c.OnResponse(s.handleResponse)
	c.OnError(func(r *colly.Response, err error) {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"area_code": r.Request.Ctx.Get("areaCode"),
			"status":    r.StatusCode,
		}).Error("Area code request failed")
		s.fail()
	})
	return s
}

// Seed fetches the sigungu codes of every area and blocks until all requests finish.
func (s *RegionSeeder) Seed(areas []category.Area) SeedStats {
	for _, area := range areas {
		params := url.Values{}
		params.Set("areaCode", area.Code)
		params.Set("numOfRows", "100")
		params.Set("pageNo", "1")

		ctx := colly.NewContext()
		ctx.Put("areaCode", area.Code)
		if err := s.collector.Request("GET", s.builder.BuildURL(tourapi.EndpointAreaCode, params), nil, ctx, nil); err != nil {
			s.logger.WithError(err).WithField("area_code", area.Code).Error("Failed to queue area")
			s.fail()
		}
	}
	s.collector.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *RegionSeeder) handleResponse(r *colly.Response) {
	areaCode := r.Request.Ctx.Get("areaCode")
	log := s.logger.WithField("area_code", areaCode)

	fetched, err := tourapi.ParseRegionCodes(r.Body)
	if err != nil {
		log.WithError(err).Error("Failed to parse area code response")
		s.fail()
		return
	}

	codes := services.RegionCodesFromAPI(areaCode, fetched)
	if s.store == nil {
		for _, code := range codes {
			log.WithFields(logrus.Fields{"sigungu_code": code.SigunguCode, "name": code.Name}).Info("Would store region code")
		}
	} else if err := s.store.Upsert(codes); err != nil {
		log.WithError(err).Error("Failed to store region codes")
		s.fail()
		return
	}

	log.WithField("count", len(codes)).Debug("Area seeded")
	s.mu.Lock()
	s.stats.Areas++
	s.stats.Codes += len(codes)
	s.mu.Unlock()
}

func (s *RegionSeeder) fail() {
	s.mu.Lock()
	s.stats.Failed++
	s.mu.Unlock()
}
