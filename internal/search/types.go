// Package search implements the multi-filter tour search: it expands the user's theme,
// activity and place selections into category-code combinations, queries the tourism
// API for each, merges and balances the results, and optionally attaches barrier-free
// accessibility information.
package search

import (
	"github.com/tripmate/backend/internal/tourapi"
)

// MaxCombinations bounds the upstream queries issued for one search.
const MaxCombinations = 80

// Criteria is a normalized filter request. Names that do not map to a category code
// have already been dropped.
type Criteria struct {
	Themes      []string `json:"themes"`
	Activities  []string `json:"activities"`
	Places      []string `json:"places"`
	AreaCode    string   `json:"areaCode"`
	SigunguCode string   `json:"sigunguCode"`
	NumOfRows   int      `json:"numOfRows"`
	PageNo      int      `json:"pageNo"`
	BarrierFree bool     `json:"barrierFree"`
}

// Combination is one concrete upstream query.
type Combination struct {
	AreaCode    string `json:"areaCode,omitempty"`
	SigunguCode string `json:"sigunguCode,omitempty"`
	Cat1        string `json:"cat1,omitempty"`
	Cat2        string `json:"cat2,omitempty"`
	Cat3        string `json:"cat3,omitempty"`
}

func (c Combination) key() string {
	return c.AreaCode + "|" + c.SigunguCode + "|" + c.Cat1 + "|" + c.Cat2 + "|" + c.Cat3
}

// CombinationStatus reports how one upstream query went.
type CombinationStatus struct {
	Combination Combination `json:"combination"`
	OK          bool        `json:"ok"`
	Count       int         `json:"count"`
	Error       string      `json:"error,omitempty"`
}

// AccessibilityInfo is the barrier-free summary of one attraction.
type AccessibilityInfo struct {
	Fields  map[string]string `json:"fields,omitempty"`
	Score   int               `json:"score"`
	HasInfo bool              `json:"hasInfo"`
}

// Tour is a search hit with its relevance score and, after enrichment, its
// accessibility summary.
type Tour struct {
	tourapi.TourItem
	Score         int
	Accessibility *AccessibilityInfo
}

// TourView is the outbound shape of one hit.
type TourView struct {
	tourapi.TourItem
	RelevanceScore     int               `json:"relevanceScore"`
	OptimizedImage     string            `json:"optimizedImage"`
	CategoryName       string            `json:"categoryName"`
	AreaName           string            `json:"areaName"`
	AccessibilityScore int               `json:"accessibilityScore"`
	HasBarrierFreeInfo bool              `json:"hasBarrierFreeInfo"`
	Accessibility      map[string]string `json:"accessibility,omitempty"`
}

// Result is the envelope returned by a filter search. It is always structurally valid;
// Success is false only when neither the combinations nor the fallback query produced
// anything.
type Result struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	Data            []TourView          `json:"data"`
	TotalCount      int                 `json:"totalCount"`
	RawCount        int                 `json:"rawCount"`
	Fallback        bool                `json:"fallback"`
	APICalls        int                 `json:"apiCalls"`
	SuccessfulCalls int                 `json:"successfulCalls"`
	Combinations    []CombinationStatus `json:"combinations"`
	BarrierFree     bool                `json:"barrierFree"`
}
