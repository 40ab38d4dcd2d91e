package search

import (
	"sort"

	"github.com/tripmate/backend/internal/tourapi"
)

// Dedupe merges the per-combination lists in order and keeps the first record seen for
// each content id. Since lists are indexed by combination, this is the record of the
// earliest combination in generation order.
func Dedupe(lists [][]tourapi.TourItem) []tourapi.TourItem {
	seen := make(map[string]bool)
	var merged []tourapi.TourItem
	for _, list := range lists {
		for _, item := range list {
			if item.ContentID == "" || seen[item.ContentID] {
				continue
			}
			seen[item.ContentID] = true
			merged = append(merged, item)
		}
	}
	return merged
}

type categoryGroup struct {
	cat1   string
	weight float64
	tours  []Tour
}

// Balance spreads target slots across the top-level categories present in tours.
// Every category gets target/len(categories) slots; the remainder goes one each to the
// heaviest categories, where weight is 1.0 plus 0.5 per selected theme mapping to the
// category and ties keep first-appearance order. Within a category tours are ranked by
// Score. A category with fewer tours than slots leaves its slots empty.
func Balance(tours []Tour, target int, sel Selection) []Tour {
	if target <= 0 || len(tours) == 0 {
		return []Tour{}
	}

	var groups []*categoryGroup
	index := make(map[string]*categoryGroup)
	for _, t := range tours {
		g, ok := index[t.Cat1]
		if !ok {
			g = &categoryGroup{cat1: t.Cat1, weight: 1.0}
			for _, code := range sel.ThemeCodes {
				if code == t.Cat1 {
					g.weight += 0.5
				}
			}
			index[t.Cat1] = g
			groups = append(groups, g)
		}
		g.tours = append(g.tours, t)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].weight > groups[j].weight
	})

	base := target / len(groups)
	extra := target % len(groups)

	out := make([]Tour, 0, target)
	for i, g := range groups {
		slots := base
		if i < extra {
			slots++
		}
		sort.SliceStable(g.tours, func(a, b int) bool {
			return g.tours[a].Score > g.tours[b].Score
		})
		if slots > len(g.tours) {
			slots = len(g.tours)
		}
		out = append(out, g.tours[:slots]...)
	}
	return out
}
