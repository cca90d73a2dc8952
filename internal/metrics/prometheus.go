package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedgen_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedgen_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint", "status"},
	)
	feedBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedgen_feed_builds_total",
			Help: "Total number of feed builds by kind and outcome.",
		},
		[]string{"kind", "status"},
	)
	feedBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedgen_feed_build_duration_seconds",
			Help:    "Histogram of feed build durations.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		},
		[]string{"kind"},
	)
	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedgen_cache_lookups_total",
			Help: "Feed cache lookups by kind and result.",
		},
		[]string{"kind", "result"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(feedBuildsTotal)
	prometheus.MustRegister(feedBuildDuration)
	prometheus.MustRegister(cacheLookupsTotal)
}

// RecordRequest records one HTTP request.
func RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := classifyStatus(statusCode)
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// RecordFeedBuild records one build of the given feed kind.
func RecordFeedBuild(kind string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	feedBuildsTotal.WithLabelValues(kind, status).Inc()
	feedBuildDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

func classifyStatus(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "2xx"
	case statusCode >= 300 && statusCode < 400:
		return "3xx"
	case statusCode >= 400 && statusCode < 500:
		return "4xx"
	case statusCode >= 500 && statusCode < 600:
		return "5xx"
	}
	return "unknown"
}

// Handler exposes the registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
