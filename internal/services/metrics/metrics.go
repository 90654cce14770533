package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const divisor = 100

// Metrics holds Prometheus collectors for the relay.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP server metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Domain metrics
	TriggersTotal         *prometheus.CounterVec
	MessagesSentTotal     *prometheus.CounterVec
	SendErrorsTotal       *prometheus.CounterVec
	LocationFailuresTotal *prometheus.CounterVec
	WeatherErrorsTotal    *prometheus.CounterVec
	RelayDuration         *prometheus.HistogramVec
	InFlightChains        prometheus.Gauge

	ServiceUptime prometheus.Gauge

	Cache *PromCollector
}

// NewMetrics constructs all relay metrics on a dedicated registry.
func NewMetrics(serviceName string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests received",
			},
			[]string{"method", "endpoint", "status_class"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: serviceName,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		TriggersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "triggers_total",
				Help:      "Weather requests received, by source",
			},
			[]string{"source"},
		),
		MessagesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "messages_sent_total",
				Help:      "Messages delivered to the watch, by kind",
			},
			[]string{"kind"},
		),
		SendErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "send_errors_total",
				Help:      "Messages the host transport refused",
			},
			[]string{"kind"},
		),
		LocationFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "location_failures_total",
				Help:      "Location lookups that ended in the sentinel message",
			},
			[]string{"code"},
		),
		WeatherErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: serviceName,
				Name:      "weather_errors_total",
				Help:      "Weather provider calls that produced no message",
			},
			[]string{"error_type"},
		),
		RelayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: serviceName,
				Name:      "relay_duration_seconds",
				Help:      "Time from trigger to outcome",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		InFlightChains: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: serviceName,
				Name:      "in_flight_requests",
				Help:      "Trigger chains currently running",
			},
		),
		ServiceUptime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: serviceName,
				Name:      "service_start_timestamp",
				Help:      "UNIX timestamp the service started at",
			},
		),

		Cache: NewPromCollector(serviceName),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TriggersTotal,
		m.MessagesSentTotal,
		m.SendErrorsTotal,
		m.LocationFailuresTotal,
		m.WeatherErrorsTotal,
		m.RelayDuration,
		m.InFlightChains,
		m.ServiceUptime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.Cache.Register(reg)

	m.ServiceUptime.Set(float64(time.Now().Unix()))

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// HTTPMiddleware returns a Gin middleware to instrument HTTP endpoints.
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		d := time.Since(start)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		m.HTTPRequestsTotal.With(prometheus.Labels{
			"method":       c.Request.Method,
			"endpoint":     endpoint,
			"status_class": getStatusClass(c.Writer.Status()),
		}).Inc()
		m.HTTPRequestDuration.With(prometheus.Labels{
			"method":   c.Request.Method,
			"endpoint": endpoint,
		}).Observe(d.Seconds())
	}
}

func getStatusClass(code int) string {
	return fmt.Sprintf("%dxx", code/divisor)
}
