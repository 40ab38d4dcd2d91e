package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedTables(t *testing.T) {
	m := Default()
	require.NotNil(t, m)
	assert.Equal(t, "A01", m.MapThemeToTop("자연"))
	assert.Equal(t, "A0201", m.MapActivityToMid("역사탐방"))
	assert.Equal(t, []string{"A01011100", "A01011200", "A01011300"}, m.MapPlaceToSubs("바다"))
}

func TestMapper_UnknownNamesResolveToEmpty(t *testing.T) {
	m := Default()
	assert.Equal(t, "", m.MapThemeToTop("우주"))
	assert.Equal(t, "", m.MapActivityToMid(""))
	assert.Nil(t, m.MapPlaceToSubs("화성"))
}

func TestMapper_NamesAreTrimmed(t *testing.T) {
	m := Default()
	assert.Equal(t, "A01", m.MapThemeToTop("  자연 "))
}

func TestIsValidHierarchy_AcceptsEveryWhitelistedTriple(t *testing.T) {
	m := Default()
	for sub, mid := range m.subParent {
		top := m.midParent[mid]
		assert.True(t, m.IsValidHierarchy(top, mid, sub), "%s/%s/%s", top, mid, sub)
	}
}

func TestIsValidHierarchy_RejectsSubFromAnotherMid(t *testing.T) {
	m := Default()
	// A01020100 belongs to A0102, not A0101.
	assert.False(t, m.IsValidHierarchy("A01", "A0101", "A01020100"))
	// Same top, sub from a different top.
	assert.False(t, m.IsValidHierarchy("A01", "A0101", "A02010100"))
	assert.False(t, m.IsValidHierarchy("A02", "A0101", ""))
	assert.False(t, m.IsValidHierarchy("A01", "", "A02010800"))
}

func TestIsValidHierarchy_EmptyAxesPass(t *testing.T) {
	m := Default()
	assert.True(t, m.IsValidHierarchy("", "", ""))
	assert.True(t, m.IsValidHierarchy("A01", "", ""))
	assert.True(t, m.IsValidHierarchy("", "A0201", ""))
	assert.True(t, m.IsValidHierarchy("", "", "A02010800"))
	assert.True(t, m.IsValidHierarchy("A02", "", "A02010800"))
}

func TestIsValidHierarchy_RejectsUnknownCodes(t *testing.T) {
	m := Default()
	assert.False(t, m.IsValidHierarchy("Z99", "", ""))
	assert.False(t, m.IsValidHierarchy("", "A0999", ""))
	assert.False(t, m.IsValidHierarchy("", "", "A01999999"))
}

func TestComplete_FillsParents(t *testing.T) {
	m := Default()
	top, mid, sub := m.Complete("", "", "A01010400")
	assert.Equal(t, "A01", top)
	assert.Equal(t, "A0101", mid)
	assert.Equal(t, "A01010400", sub)

	top, mid, sub = m.Complete("", "A0303", "")
	assert.Equal(t, "A03", top)
	assert.Equal(t, "A0303", mid)
	assert.Equal(t, "", sub)
}

func TestDisplayName_PrefersMostSpecific(t *testing.T) {
	m := Default()
	assert.Equal(t, "산", m.DisplayName("A01", "A0101", "A01010400"))
	assert.Equal(t, "자연관광지", m.DisplayName("A01", "A0101", "A01999999"))
	assert.Equal(t, "", m.DisplayName("", "", ""))
}

func TestAreas_SortedNumerically(t *testing.T) {
	areas := Default().Areas()
	require.NotEmpty(t, areas)
	assert.Equal(t, "1", areas[0].Code)
	assert.Equal(t, "39", areas[len(areas)-1].Code)
	assert.Equal(t, "제주", Default().AreaName("39"))
}

func TestLoad_RejectsDanglingMapping(t *testing.T) {
	doc := []byte(`
hierarchy:
  - code: A01
    name: 자연
    mids: []
themes:
  바다: B99
`)
	_, err := Load(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B99")
}
