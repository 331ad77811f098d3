package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for model calls.
const (
	OutcomeOK            = "ok"
	OutcomeEmpty         = "empty"
	OutcomeUpstreamError = "upstream_error"
	OutcomeParseError    = "parse_error"
)

// Recorder receives per-call model metrics. Packages that call the model
// depend on this interface rather than on Prometheus.
type Recorder interface {
	ObserveLLM(operation, outcome string, elapsed time.Duration)
}

// NopRecorder discards observations.
type NopRecorder struct{}

// ObserveLLM does nothing.
func (NopRecorder) ObserveLLM(string, string, time.Duration) {}

// Metrics owns a private registry so tests and multiple servers never
// collide on the global one.
type Metrics struct {
	registry        *prometheus.Registry
	llmRequests     *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	rateLimitDenied *prometheus.CounterVec
}

// NewMetrics registers the CRM collectors plus the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		llmRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_llm_requests_total",
				Help: "Total number of model calls by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		llmDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_llm_request_duration_seconds",
				Help:    "Model call duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"operation"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		rateLimitDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_rate_limit_denied_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"tier"},
		),
	}

	m.registry.MustRegister(
		m.llmRequests,
		m.llmDuration,
		m.httpRequests,
		m.httpDuration,
		m.rateLimitDenied,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveLLM records one model call.
func (m *Metrics) ObserveLLM(operation, outcome string, elapsed time.Duration) {
	m.llmRequests.WithLabelValues(operation, outcome).Inc()
	m.llmDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served request. route is the mux pattern, not the
// raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRateLimited counts a rejected request.
func (m *Metrics) ObserveRateLimited(tier string) {
	m.rateLimitDenied.WithLabelValues(tier).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
