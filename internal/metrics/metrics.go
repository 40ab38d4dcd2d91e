package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripmate_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tripmate_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	UpstreamCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripmate_tourapi_calls_total",
		Help: "Calls to the tourism API by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	UpstreamCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tripmate_tourapi_call_duration_seconds",
		Help:    "Duration of tourism API calls in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	FilterSearches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripmate_filter_searches_total",
		Help: "Filter searches by how they were answered",
	}, []string{"source"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripmate_cache_lookups_total",
		Help: "Redis cache lookups by namespace and result",
	}, []string{"namespace", "result"})
)
