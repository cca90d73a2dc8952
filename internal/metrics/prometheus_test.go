package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := map[int]string{
		200: "2xx",
		304: "3xx",
		404: "4xx",
		503: "5xx",
		99:  "unknown",
	}
	for code, want := range tests {
		assert.Equal(t, want, classifyStatus(code), code)
	}
}

func TestRecordFeedBuild(t *testing.T) {
	before := testutil.ToFloat64(feedBuildsTotal.WithLabelValues("reviews", "error"))
	RecordFeedBuild("reviews", errors.New("boom"), time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(feedBuildsTotal.WithLabelValues("reviews", "error")))
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("product", "hit"))
	misses := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("product", "miss"))

	RecordCacheLookup("product", true)
	RecordCacheLookup("product", false)
	RecordCacheLookup("product", false)

	assert.Equal(t, hits+1, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("product", "hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("product", "miss")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordRequest(http.MethodGet, "/google-feed", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `feedgen_http_requests_total{endpoint="/google-feed",method="GET",status="2xx"}`)
}
