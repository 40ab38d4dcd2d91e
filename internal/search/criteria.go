package search

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tripmate/backend/internal/category"
)

const (
	DefaultNumOfRows = 10
	MinNumOfRows     = 1
	MaxNumOfRows     = 50
)

// ParseCriteria normalizes the raw query parameters of a filter request. List values
// may be comma-separated or a JSON array. Unknown names are dropped, the row count is
// clamped to [1,50] and the page number is at least 1.
func ParseCriteria(params map[string]string, m *category.Mapper) Criteria {
	c := Criteria{
		AreaCode:    strings.TrimSpace(params["areaCode"]),
		SigunguCode: strings.TrimSpace(params["sigunguCode"]),
		NumOfRows:   DefaultNumOfRows,
		PageNo:      1,
	}

	c.Themes = keepKnown(parseList(params["themes"]), func(n string) bool { return m.MapThemeToTop(n) != "" })
	c.Activities = keepKnown(parseList(params["activities"]), func(n string) bool { return m.MapActivityToMid(n) != "" })
	c.Places = keepKnown(parseList(params["places"]), func(n string) bool { return len(m.MapPlaceToSubs(n)) > 0 })

	if n, err := strconv.Atoi(strings.TrimSpace(params["numOfRows"])); err == nil {
		c.NumOfRows = clamp(n, MinNumOfRows, MaxNumOfRows)
	}
	if p, err := strconv.Atoi(strings.TrimSpace(params["pageNo"])); err == nil && p > 1 {
		c.PageNo = p
	}

	switch strings.ToLower(strings.TrimSpace(params["barrierFree"])) {
	case "true", "1", "y", "yes":
		c.BarrierFree = true
	}

	return c
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			parts = strings.Split(strings.Trim(raw, "[]"), ",")
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func keepKnown(names []string, known func(string) bool) []string {
	var out []string
	for _, n := range names {
		if known(n) {
			out = append(out, n)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Selection holds the category codes the criteria resolve to.
type Selection struct {
	// ThemeCodes has one entry per selected theme, so a code repeats when two themes
	// map to it.
	ThemeCodes    []string
	ActivityCodes []string
	PlaceCodes    []string
}

func NewSelection(c Criteria, m *category.Mapper) Selection {
	var s Selection
	for _, name := range c.Themes {
		if code := m.MapThemeToTop(name); code != "" {
			s.ThemeCodes = append(s.ThemeCodes, code)
		}
	}
	for _, name := range c.Activities {
		if code := m.MapActivityToMid(name); code != "" {
			s.ActivityCodes = append(s.ActivityCodes, code)
		}
	}
	for _, name := range c.Places {
		s.PlaceCodes = append(s.PlaceCodes, m.MapPlaceToSubs(name)...)
	}
	return s
}

func contains(codes []string, code string) bool {
	if code == "" {
		return false
	}
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
