package search

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/tripmate/backend/internal/tourapi"
)

// ListSource is the tourism API operation the executor needs.
type ListSource interface {
	AreaBasedList(ctx context.Context, q tourapi.ListQuery) (*tourapi.Page, error)
}

// Executor runs one upstream query per combination with bounded parallelism.
type Executor struct {
	api         ListSource
	concurrency int64
	rows        int
	logger      *logrus.Logger
}

func NewExecutor(api ListSource, concurrency, rowsPerCombination int, logger *logrus.Logger) *Executor {
	if concurrency <= 0 {
		concurrency = 8
	}
	if rowsPerCombination <= 0 {
		rowsPerCombination = 20
	}
	return &Executor{
		api:         api,
		concurrency: int64(concurrency),
		rows:        rowsPerCombination,
		logger:      logger,
	}
}

// Run issues every combination and returns the item lists and statuses indexed like
// combos. A failed combination yields an empty list and a status carrying the error.
func (e *Executor) Run(ctx context.Context, combos []Combination, pageNo int) ([][]tourapi.TourItem, []CombinationStatus) {
	results := make([][]tourapi.TourItem, len(combos))
	statuses := make([]CombinationStatus, len(combos))

	sem := semaphore.NewWeighted(e.concurrency)
	var wg sync.WaitGroup

	for i, combo := range combos {
		statuses[i].Combination = combo

		if err := sem.Acquire(ctx, 1); err != nil {
			statuses[i].Error = err.Error()
			continue
		}

		wg.Add(1)
		go func(i int, combo Combination) {
			defer wg.Done()
			defer sem.Release(1)

			items, err := e.fetch(ctx, combo, pageNo)
			if err != nil {
				e.logger.WithFields(logrus.Fields{
					"area_code": combo.AreaCode,
					"cat1":      combo.Cat1,
					"cat2":      combo.Cat2,
					"cat3":      combo.Cat3,
					"error":     err.Error(),
				}).Warn("Combination search failed")
				statuses[i].Error = err.Error()
				results[i] = []tourapi.TourItem{}
				return
			}
			results[i] = items
			statuses[i].OK = true
			statuses[i].Count = len(items)
		}(i, combo)
	}

	wg.Wait()

	for i := range results {
		if results[i] == nil {
			results[i] = []tourapi.TourItem{}
		}
	}
	return results, statuses
}

func (e *Executor) fetch(ctx context.Context, combo Combination, pageNo int) ([]tourapi.TourItem, error) {
	page, err := e.api.AreaBasedList(ctx, tourapi.ListQuery{
		AreaCode:      combo.AreaCode,
		SigunguCode:   combo.SigunguCode,
		ContentTypeID: tourapi.ContentTypeAttraction,
		Cat1:          combo.Cat1,
		Cat2:          combo.Cat2,
		Cat3:          combo.Cat3,
		NumOfRows:     e.rows,
		PageNo:        pageNo,
		Arrange:       "Q",
	})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
