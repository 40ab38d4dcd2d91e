package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripmate/backend/internal/category"
	"github.com/tripmate/backend/internal/models"
)

type testBuilder struct {
	base string
}

func (b testBuilder) BuildURL(endpoint string, params url.Values) string {
	return b.base + endpoint + "?" + params.Encode()
}

type memoryRegions struct {
	mu    sync.Mutex
	codes map[string][]models.RegionCode
}

func (m *memoryRegions) Upsert(codes []models.RegionCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range codes {
		m.codes[c.AreaCode] = append(m.codes[c.AreaCode], c)
	}
	return nil
}

func (m *memoryRegions) ListByArea(areaCode string) ([]models.RegionCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[areaCode], nil
}

func TestRegionSeeder_Seed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("areaCode") {
		case "1":
			fmt.Fprint(w, `{"response":{"header":{"resultCode":"0000","resultMsg":"OK"},"body":{"items":{"item":[{"code":"1","name":"강남구","rnum":1},{"code":"2","name":"강동구","rnum":2}]}}}}`)
		case "39":
			fmt.Fprint(w, `{"response":{"header":{"resultCode":"0000","resultMsg":"OK"},"body":{"items":{"item":[{"code":"3","name":"서귀포시","rnum":1}]}}}}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := &memoryRegions{codes: map[string][]models.RegionCode{}}

	seeder := NewRegionSeeder(testBuilder{base: server.URL}, store, SeederOptions{Parallelism: 2}, logger)
	stats := seeder.Seed([]category.Area{{Code: "1", Name: "서울"}, {Code: "39", Name: "제주"}, {Code: "99", Name: "없음"}})

	assert.Equal(t, 2, stats.Areas)
	assert.Equal(t, 3, stats.Codes)
	assert.Equal(t, 1, stats.Failed)

	seoul, _ := store.ListByArea("1")
	require.Len(t, seoul, 2)
	assert.Equal(t, "강남구", seoul[0].Name)
	assert.Equal(t, "1", seoul[0].AreaCode)
	assert.Equal(t, 1, seoul[0].SortOrder)
}

func TestRegionSeeder_DryRunWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response":{"header":{"resultCode":"03","resultMsg":"NO_DATA"},"body":{"items":""}}}`)
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	seeder := NewRegionSeeder(testBuilder{base: server.URL}, nil, SeederOptions{}, logger)
	stats := seeder.Seed([]category.Area{{Code: "8", Name: "세종"}})

	assert.Equal(t, SeedStats{Areas: 1}, stats)
}
