package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimitedTotal    prometheus.Counter
	llmGenerateTotal    *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates a metrics instance with all gateway metrics registered
// on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		rateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gateway_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		llmGenerateTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_llm_generate_total",
				Help: "Total number of LLM generation calls by provider and status",
			},
			[]string{"provider", "status"},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.rateLimitedTotal,
		m.llmGenerateTotal,
	)

	return m
}

// RecordRequest records one completed HTTP request.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRateLimited records one throttled request.
func (m *Metrics) RecordRateLimited() {
	m.rateLimitedTotal.Inc()
}

// RecordGenerate records one LLM generation call.
func (m *Metrics) RecordGenerate(provider string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.llmGenerateTotal.WithLabelValues(provider, status).Inc()
}

// Handler returns the /metrics endpoint handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
