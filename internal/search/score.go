package search

import (
	"github.com/tripmate/backend/internal/tourapi"
)

// Score is the additive relevance heuristic used to rank tours inside a category.
func Score(item tourapi.TourItem, sel Selection) int {
	score := 0

	if contains(sel.ThemeCodes, item.Cat1) {
		score += 30
	}
	if contains(sel.ActivityCodes, item.Cat2) {
		score += 20
	}
	if contains(sel.PlaceCodes, item.Cat3) {
		score += 15
	}

	if item.FirstImage != "" {
		score += 5
	}
	if item.Addr2 != "" {
		score += 3
	}
	if item.Tel != "" {
		score += 2
	}
	if item.MapX != 0 && item.MapY != 0 {
		score += 2
	}

	switch item.ModifiedYear() {
	case 2024, 2025:
		score += 3
	case 2022, 2023:
		score++
	}

	return score
}

// ScoreAll wraps items as tours carrying their relevance score.
func ScoreAll(items []tourapi.TourItem, sel Selection) []Tour {
	tours := make([]Tour, len(items))
	for i, item := range items {
		tours[i] = Tour{TourItem: item, Score: Score(item, sel)}
	}
	return tours
}
