// Package metrics provides Prometheus metrics export for UI hint processing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusExporter exports processing metrics in Prometheus format.
type PrometheusExporter struct {
	registry *prometheus.Registry

	// Request metrics
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inFlight prometheus.Gauge

	// Hint metrics
	hintItems *prometheus.HistogramVec
	errors    *prometheus.CounterVec
}

// Config configures the Prometheus exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64

	// Buckets for the number of rows or lines per hint
	ItemBuckets []float64

	// RuntimeCollectors registers the Go runtime and process collectors.
	RuntimeCollectors bool
}

// DefaultConfig returns default Prometheus configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		ItemBuckets:    []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
	}
}

// NewPrometheusExporter creates a new Prometheus metrics exporter.
func NewPrometheusExporter(cfg Config) *PrometheusExporter {
	defaults := DefaultConfig()
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = defaults.LatencyBuckets
	}
	if len(cfg.ItemBuckets) == 0 {
		cfg.ItemBuckets = defaults.ItemBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &PrometheusExporter{
		registry: registry,
	}

	e.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uihint",
			Subsystem: "api",
			Name:      "process_requests_total",
			Help:      "Total number of process requests",
		},
		[]string{"format", "status"},
	)

	e.latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "uihint",
			Subsystem: "api",
			Name:      "process_latency_seconds",
			Help:      "Process request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"format"},
	)

	e.inFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "uihint",
			Subsystem: "api",
			Name:      "process_in_flight",
			Help:      "Number of process requests being handled",
		},
	)

	e.hintItems = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "uihint",
			Subsystem: "api",
			Name:      "hint_items",
			Help:      "Number of table rows or card lines per UI hint",
			Buckets:   cfg.ItemBuckets,
		},
		[]string{"ui_type"},
	)

	e.errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "uihint",
			Subsystem: "api",
			Name:      "process_errors_total",
			Help:      "Total number of failed process requests",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(
		e.requests,
		e.latency,
		e.inFlight,
		e.hintItems,
		e.errors,
	)
	if cfg.RuntimeCollectors {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	return e
}

// RecordRequest records a process request metric.
// An empty format label is reported as "unknown".
func (e *PrometheusExporter) RecordRequest(format string, latency time.Duration, success bool) {
	if format == "" {
		format = "unknown"
	}
	status := "success"
	if !success {
		status = "error"
	}

	e.requests.WithLabelValues(format, status).Inc()
	e.latency.WithLabelValues(format).Observe(latency.Seconds())
}

// RecordHint records the size of a produced hint.
func (e *PrometheusExporter) RecordHint(uiType string, items int) {
	e.hintItems.WithLabelValues(uiType).Observe(float64(items))
}

// RecordError records a failed request by error class.
func (e *PrometheusExporter) RecordError(errorType string) {
	e.errors.WithLabelValues(errorType).Inc()
}

// TrackInFlight increments the in-flight gauge and returns a func that
// decrements it.
func (e *PrometheusExporter) TrackInFlight() func() {
	e.inFlight.Inc()
	return e.inFlight.Dec
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *PrometheusExporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{Registry: e.registry})
}

// ServeHTTP implements http.Handler for the metrics endpoint.
func (e *PrometheusExporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.Handler().ServeHTTP(w, r)
}

// GetRegistry returns the Prometheus registry.
func (e *PrometheusExporter) GetRegistry() *prometheus.Registry {
	return e.registry
}
