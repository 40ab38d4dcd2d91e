package tourapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/tripmate/backend/internal/metrics"
)

// Endpoints of the tourism API used by this service.
const (
	EndpointAreaBasedList  = "/areaBasedList1"
	EndpointSearchKeyword  = "/searchKeyword1"
	EndpointDetailCommon   = "/detailCommon1"
	EndpointAreaCode       = "/areaCode1"
	EndpointDetailWithTour = "/detailWithTour1"
)

// ErrNoData is returned when the API answers with the "no data" result code.
var ErrNoData = errors.New("tourapi: no data")

// APIError is a well-formed envelope carrying a failure result code.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tourapi: result code %s: %s", e.Code, e.Message)
}

// HTTPClient is the subset of *http.Client the client needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL            string
	BarrierFreeBaseURL string
	ServiceKey         string
	AppName            string
	ConnectTimeout     time.Duration
	RequestTimeout     time.Duration
	RatePerSecond      float64
	RateBurst          int
}

type Client struct {
	baseURL        string
	barrierFreeURL string
	serviceKey     string
	appName        string
	httpClient     HTTPClient
	limiter        *rate.Limiter
	retry          RetryConfig
	logger         *logrus.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithRetryConfig(cfg RetryConfig) ClientOption {
	return func(c *Client) {
		c.retry = cfg
	}
}

// WithLimiter replaces the process-wide upstream limiter. A nil limiter disables limiting.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

func NewClient(cfg Config, logger *logrus.Logger, opts ...ClientOption) *Client {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	appName := cfg.AppName
	if appName == "" {
		appName = "tripmate"
	}

	c := &Client{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		barrierFreeURL: strings.TrimRight(cfg.BarrierFreeBaseURL, "/"),
		serviceKey:     cfg.ServiceKey,
		appName:        appName,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: connectTimeout}).DialContext,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retry:  DefaultRetryConfig(),
		logger: logger,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AreaBasedList lists attractions filtered by area and category codes. A "no data"
// answer is an empty page.
func (c *Client) AreaBasedList(ctx context.Context, q ListQuery) (*Page, error) {
	body, err := c.get(ctx, c.baseURL, EndpointAreaBasedList, q.values())
	if errors.Is(err, ErrNoData) {
		return &Page{Items: []TourItem{}, PageNo: q.PageNo, NumOfRows: q.NumOfRows}, nil
	}
	if err != nil {
		return nil, err
	}
	return pageFromBody(*body), nil
}

// SearchKeyword runs a keyword search narrowed by the optional filters of q.
func (c *Client) SearchKeyword(ctx context.Context, keyword string, q ListQuery) (*Page, error) {
	params := q.values()
	params.Set("keyword", keyword)

	body, err := c.get(ctx, c.baseURL, EndpointSearchKeyword, params)
	if errors.Is(err, ErrNoData) {
		return &Page{Items: []TourItem{}, PageNo: q.PageNo, NumOfRows: q.NumOfRows}, nil
	}
	if err != nil {
		return nil, err
	}
	return pageFromBody(*body), nil
}

// DetailCommon fetches the common detail record of one content id.
func (c *Client) DetailCommon(ctx context.Context, contentID string) (*TourDetail, error) {
	params := url.Values{}
	params.Set("contentId", contentID)
	for _, flag := range []string{"defaultYN", "firstImageYN", "areacodeYN", "catcodeYN", "addrinfoYN", "mapinfoYN", "overviewYN"} {
		params.Set(flag, "Y")
	}

	body, err := c.get(ctx, c.baseURL, EndpointDetailCommon, params)
	if err != nil {
		return nil, err
	}
	if len(body.Items) == 0 {
		return nil, ErrNoData
	}

	raw := body.Items[0]
	return &TourDetail{
		TourItem: raw.ToTourItem(),
		Homepage: raw.String("homepage"),
		Overview: raw.String("overview"),
		Zipcode:  raw.String("zipcode"),
		TelName:  raw.String("telname"),
	}, nil
}

// DetailWithTour fetches the barrier-free facility record of one content id as a
// field name to description map.
func (c *Client) DetailWithTour(ctx context.Context, contentID string) (map[string]string, error) {
	params := url.Values{}
	params.Set("contentId", contentID)

	body, err := c.get(ctx, c.barrierFreeURL, EndpointDetailWithTour, params)
	if err != nil {
		return nil, err
	}
	if len(body.Items) == 0 {
		return nil, ErrNoData
	}

	fields := make(map[string]string, len(body.Items[0]))
	for key := range body.Items[0] {
		if key == "contentid" {
			continue
		}
		fields[key] = body.Items[0].String(key)
	}
	return fields, nil
}

// AreaCodes lists the area codes, or the sigungu codes of areaCode when it is set.
func (c *Client) AreaCodes(ctx context.Context, areaCode string) ([]RegionCode, error) {
	params := url.Values{}
	params.Set("numOfRows", "100")
	params.Set("pageNo", "1")
	if areaCode != "" {
		params.Set("areaCode", areaCode)
	}

	body, err := c.get(ctx, c.baseURL, EndpointAreaCode, params)
	if errors.Is(err, ErrNoData) {
		return []RegionCode{}, nil
	}
	if err != nil {
		return nil, err
	}
	return regionCodesFromItems(body.Items), nil
}

// BuildURL returns the full request URL of a main-service endpoint, including the
// common parameters.
func (c *Client) BuildURL(endpoint string, params url.Values) string {
	return c.buildURL(c.baseURL, endpoint, params)
}

// ParseRegionCodes decodes an areaCode response body.
func ParseRegionCodes(data []byte) ([]RegionCode, error) {
	body, err := decodeEnvelope(data)
	if errors.Is(err, ErrNoData) {
		return []RegionCode{}, nil
	}
	if err != nil {
		return nil, err
	}
	return regionCodesFromItems(body.Items), nil
}

func regionCodesFromItems(items Items) []RegionCode {
	codes := make([]RegionCode, 0, len(items))
	for _, raw := range items {
		code := raw.String("code")
		if code == "" {
			continue
		}
		rnum, _ := strconv.Atoi(raw.String("rnum"))
		codes = append(codes, RegionCode{Code: code, Name: raw.String("name"), Rnum: rnum})
	}
	return codes
}

func (q ListQuery) values() url.Values {
	params := url.Values{}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	set("areaCode", q.AreaCode)
	set("sigunguCode", q.SigunguCode)
	set("contentTypeId", q.ContentTypeID)
	set("cat1", q.Cat1)
	set("cat2", q.Cat2)
	set("cat3", q.Cat3)
	set("arrange", q.Arrange)
	if q.NumOfRows > 0 {
		params.Set("numOfRows", strconv.Itoa(q.NumOfRows))
	}
	if q.PageNo > 0 {
		params.Set("pageNo", strconv.Itoa(q.PageNo))
	}
	return params
}

func (c *Client) buildURL(base, endpoint string, params url.Values) string {
	all := url.Values{}
	for k, v := range params {
		all[k] = v
	}
	all.Set("MobileOS", "ETC")
	all.Set("MobileApp", c.appName)
	all.Set("_type", "json")

	// Portal keys are usually handed out already percent-encoded.
	key := c.serviceKey
	if !strings.Contains(key, "%") {
		key = url.QueryEscape(key)
	}
	return base + endpoint + "?serviceKey=" + key + "&" + all.Encode()
}

func (c *Client) get(ctx context.Context, base, endpoint string, params url.Values) (*Body, error) {
	start := time.Now()
	body, err := c.do(ctx, base, endpoint, params)

	outcome := "ok"
	switch {
	case errors.Is(err, ErrNoData):
		outcome = "no_data"
	case err != nil:
		outcome = "error"
	}
	metrics.UpstreamCallsTotal.WithLabelValues(endpoint, outcome).Inc()
	metrics.UpstreamCallDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	return body, err
}

func (c *Client) do(ctx context.Context, base, endpoint string, params url.Values) (*Body, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(base, endpoint, params), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"params":   params.Encode(),
	}).Debug("Making tourism API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"endpoint":      endpoint,
		"status_code":   resp.StatusCode,
		"response_size": len(data),
	}).Debug("Tourism API response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	return decodeEnvelope(data)
}

func decodeEnvelope(data []byte) (*Body, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	header := env.Response.Header
	switch header.ResultCode {
	case ResultOK:
		return &env.Response.Body, nil
	case ResultNoData:
		return nil, ErrNoData
	default:
		return nil, &APIError{Code: header.ResultCode, Message: header.ResultMsg}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
