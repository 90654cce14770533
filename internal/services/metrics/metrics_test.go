package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/services/metrics"
)

func TestHTTPMiddleware_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewMetrics("relay_test")

	router := gin.New()
	router.Use(m.HTTPMiddleware())
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.InDelta(t, 3, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "2xx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "4xx")), 0)
}

func TestHandler_ExposesDomainMetrics(t *testing.T) {
	m := metrics.NewMetrics("relay_test")
	m.TriggersTotal.WithLabelValues("host").Inc()
	m.Cache.ObserveLatency("cache_get", time.Millisecond)
	m.Cache.IncrementCounter("cache_get", "hit")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `relay_test_triggers_total{source="host"} 1`)
	assert.Contains(t, body, `relay_test_cache_operations_total{operation="cache_get",result="hit"} 1`)
}

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	var first, second *metrics.Metrics
	assert.NotPanics(t, func() {
		first = metrics.NewMetrics("relay_test")
		second = metrics.NewMetrics("relay_test")
	})
	require.NotSame(t, first.Registry(), second.Registry())

	first.MessagesSentTotal.WithLabelValues("weather").Inc()

	n, err := testutil.GatherAndCount(first.Registry(), "relay_test_messages_sent_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = testutil.GatherAndCount(second.Registry(), "relay_test_messages_sent_total")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
