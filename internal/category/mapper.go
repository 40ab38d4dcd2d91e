// Package category translates the names used by the filter UI into the tourism API's
// three-level category codes and validates code hierarchies.
//
// The tables live in categories.yaml, embedded into the binary and decoded once.
package category

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed categories.yaml
var embeddedTables []byte

type subNode struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type midNode struct {
	Code string    `yaml:"code"`
	Name string    `yaml:"name"`
	Subs []subNode `yaml:"subs"`
}

type topNode struct {
	Code string    `yaml:"code"`
	Name string    `yaml:"name"`
	Mids []midNode `yaml:"mids"`
}

type tables struct {
	Hierarchy  []topNode           `yaml:"hierarchy"`
	Themes     map[string]string   `yaml:"themes"`
	Activities map[string]string   `yaml:"activities"`
	Places     map[string][]string `yaml:"places"`
	Areas      map[string]string   `yaml:"areas"`
}

// Area is one top-level region code of the tourism API.
type Area struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Mapper holds the immutable lookup tables. It is safe for concurrent use.
type Mapper struct {
	tops       map[string]bool
	midParent  map[string]string
	subParent  map[string]string
	names      map[string]string
	themes     map[string]string
	activities map[string]string
	places     map[string][]string
	areas      []Area
	areaNames  map[string]string
}

var (
	defaultOnce   sync.Once
	defaultMapper *Mapper
)

// Default returns the mapper built from the embedded tables.
func Default() *Mapper {
	defaultOnce.Do(func() {
		m, err := Load(embeddedTables)
		if err != nil {
			panic(fmt.Sprintf("category: embedded tables are invalid: %v", err))
		}
		defaultMapper = m
	})
	return defaultMapper
}

// Load decodes a YAML table document and checks that every name mapping points at a
// code present in the hierarchy.
func Load(data []byte) (*Mapper, error) {
	var t tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse category tables: %w", err)
	}

	m := &Mapper{
		tops:       make(map[string]bool),
		midParent:  make(map[string]string),
		subParent:  make(map[string]string),
		names:      make(map[string]string),
		themes:     make(map[string]string),
		activities: make(map[string]string),
		places:     make(map[string][]string),
		areaNames:  make(map[string]string),
	}

	for _, top := range t.Hierarchy {
		m.tops[top.Code] = true
		m.names[top.Code] = top.Name
		for _, mid := range top.Mids {
			m.midParent[mid.Code] = top.Code
			m.names[mid.Code] = mid.Name
			for _, sub := range mid.Subs {
				m.subParent[sub.Code] = mid.Code
				m.names[sub.Code] = sub.Name
			}
		}
	}

	for name, code := range t.Themes {
		if !m.tops[code] {
			return nil, fmt.Errorf("theme %q maps to unknown top code %s", name, code)
		}
		m.themes[normalize(name)] = code
	}
	for name, code := range t.Activities {
		if _, ok := m.midParent[code]; !ok {
			return nil, fmt.Errorf("activity %q maps to unknown mid code %s", name, code)
		}
		m.activities[normalize(name)] = code
	}
	for name, codes := range t.Places {
		for _, code := range codes {
			if _, ok := m.subParent[code]; !ok {
				return nil, fmt.Errorf("place %q maps to unknown sub code %s", name, code)
			}
		}
		m.places[normalize(name)] = append([]string(nil), codes...)
	}

	for code, name := range t.Areas {
		m.areas = append(m.areas, Area{Code: code, Name: name})
		m.areaNames[code] = name
	}
	sort.Slice(m.areas, func(i, j int) bool {
		a, _ := strconv.Atoi(m.areas[i].Code)
		b, _ := strconv.Atoi(m.areas[j].Code)
		return a < b
	})

	return m, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MapThemeToTop returns the top-level code for a theme name, or "" if unknown.
func (m *Mapper) MapThemeToTop(name string) string {
	return m.themes[normalize(name)]
}

// MapActivityToMid returns the mid-level code for an activity name, or "" if unknown.
func (m *Mapper) MapActivityToMid(name string) string {
	return m.activities[normalize(name)]
}

// MapPlaceToSubs returns the sibling sub-level codes for a place name, or nil if unknown.
func (m *Mapper) MapPlaceToSubs(name string) []string {
	codes := m.places[normalize(name)]
	if len(codes) == 0 {
		return nil
	}
	return append([]string(nil), codes...)
}

// IsValidHierarchy reports whether the non-empty codes can appear together in one
// (top, mid, sub) triple of the whitelist. Empty codes are unconstrained.
func (m *Mapper) IsValidHierarchy(top, mid, sub string) bool {
	if top != "" && !m.tops[top] {
		return false
	}

	midTop := ""
	if mid != "" {
		parent, ok := m.midParent[mid]
		if !ok {
			return false
		}
		if top != "" && parent != top {
			return false
		}
		midTop = parent
	}

	if sub != "" {
		subMid, ok := m.subParent[sub]
		if !ok {
			return false
		}
		if mid != "" && subMid != mid {
			return false
		}
		if top != "" && m.midParent[subMid] != top {
			return false
		}
		if midTop != "" && m.midParent[subMid] != midTop {
			return false
		}
	}

	return true
}

// Complete fills in the parent codes implied by the narrowest code given. The input is
// expected to have passed IsValidHierarchy.
func (m *Mapper) Complete(top, mid, sub string) (string, string, string) {
	if sub != "" && mid == "" {
		mid = m.subParent[sub]
	}
	if mid != "" && top == "" {
		top = m.midParent[mid]
	}
	return top, mid, sub
}

// Name returns the human-readable name of any category code.
func (m *Mapper) Name(code string) string {
	return m.names[code]
}

// DisplayName returns the name of the most specific code that is known.
func (m *Mapper) DisplayName(cat1, cat2, cat3 string) string {
	for _, code := range []string{cat3, cat2, cat1} {
		if name := m.names[code]; name != "" {
			return name
		}
	}
	return ""
}

// Areas returns the area table ordered by numeric code.
func (m *Mapper) Areas() []Area {
	return append([]Area(nil), m.areas...)
}

// AreaName returns the name of an area code, or "" if unknown.
func (m *Mapper) AreaName(code string) string {
	return m.areaNames[code]
}
