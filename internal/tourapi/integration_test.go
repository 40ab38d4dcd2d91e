//go:build integration

package tourapi

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegration_RealAPI(t *testing.T) {
	serviceKey := os.Getenv("TOURAPI_SERVICE_KEY")
	if serviceKey == "" {
		t.Skip("TOURAPI_SERVICE_KEY required for integration tests")
	}

	client := NewClient(Config{
		BaseURL:            "https://apis.data.go.kr/B551011/KorService1",
		BarrierFreeBaseURL: "https://apis.data.go.kr/B551011/KorWithService1",
		ServiceKey:         serviceKey,
		RatePerSecond:      2,
		RateBurst:          1,
	}, logrus.New())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	page, err := client.AreaBasedList(ctx, ListQuery{AreaCode: "1", Cat1: "A02", NumOfRows: 5, PageNo: 1})
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)
	assert.Equal(t, "1", page.Items[0].AreaCode)

	codes, err := client.AreaCodes(ctx, "39")
	require.NoError(t, err)
	assert.NotEmpty(t, codes)

	detail, err := client.DetailCommon(ctx, page.Items[0].ContentID)
	require.NoError(t, err)
	assert.Equal(t, page.Items[0].ContentID, detail.ContentID)
}
