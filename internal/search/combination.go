package search

import (
	"github.com/tripmate/backend/internal/category"
)

// GenerateCombinations crosses the selected themes, activities and place codes for the
// criteria's area. An empty axis contributes a single unconstrained value. Tuples that
// are not a valid category hierarchy are skipped, implied parent codes are filled in,
// repeats are emitted once, and the output stops at MaxCombinations in generation order.
func GenerateCombinations(c Criteria, m *category.Mapper) []Combination {
	sel := NewSelection(c, m)

	tops := axis(sel.ThemeCodes)
	mids := axis(sel.ActivityCodes)
	subs := axis(sel.PlaceCodes)

	combos := make([]Combination, 0, min(len(tops)*len(mids)*len(subs), MaxCombinations))
	seen := make(map[string]bool)

	for _, top := range tops {
		for _, mid := range mids {
			for _, sub := range subs {
				if !m.IsValidHierarchy(top, mid, sub) {
					continue
				}
				cat1, cat2, cat3 := m.Complete(top, mid, sub)
				combo := Combination{
					AreaCode:    c.AreaCode,
					SigunguCode: c.SigunguCode,
					Cat1:        cat1,
					Cat2:        cat2,
					Cat3:        cat3,
				}
				if seen[combo.key()] {
					continue
				}
				seen[combo.key()] = true
				combos = append(combos, combo)
				if len(combos) == MaxCombinations {
					return combos
				}
			}
		}
	}
	return combos
}

// axis dedupes codes in order; an empty selection is the single unconstrained value.
func axis(codes []string) []string {
	if len(codes) == 0 {
		return []string{""}
	}
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}
