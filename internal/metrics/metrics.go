// Package metrics holds the Prometheus collectors shared by the library server and
// the storage relay.
package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a private registry plus the collectors this codebase reports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	uploads          *prometheus.CounterVec
	uploadBytes      prometheus.Counter
	telemetryFailure *prometheus.CounterVec
	telemetryDropped prometheus.Counter
}

// New creates a registry for the named service with Go and process collectors
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	constLabels := prometheus.Labels{"service": service}
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "library",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "HTTP requests by route pattern, method and status code.",
			ConstLabels: constLabels,
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "library",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request latency by route pattern.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"route", "method"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "library",
			Subsystem:   "storage",
			Name:        "uploads_total",
			Help:        "Objects stored by upload type.",
			ConstLabels: constLabels,
		}, []string{"type"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "library",
			Subsystem:   "storage",
			Name:        "upload_bytes_total",
			Help:        "Bytes stored through uploads.",
			ConstLabels: constLabels,
		}),
		telemetryFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "library",
			Subsystem:   "analytics",
			Name:        "failures_total",
			Help:        "Best-effort analytics writes that failed, by operation.",
			ConstLabels: constLabels,
		}, []string{"op"}),
		telemetryDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "library",
			Subsystem:   "analytics",
			Name:        "dropped_total",
			Help:        "Analytics writes discarded because the queue was full or closed.",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		m.requests,
		m.requestDuration,
		m.uploads,
		m.uploadBytes,
		m.telemetryFailure,
		m.telemetryDropped,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler(logger *slog.Logger) http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      promLogger{logger},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(route, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// ObserveUpload records one stored object
func (m *Metrics) ObserveUpload(kind string, size int64) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(kind).Inc()
	m.uploadBytes.Add(float64(size))
}

// TelemetryFailed counts a failed best-effort analytics write
func (m *Metrics) TelemetryFailed(op string) {
	if m == nil {
		return
	}
	m.telemetryFailure.WithLabelValues(op).Inc()
}

// TelemetryDropped counts an analytics write that was never attempted
func (m *Metrics) TelemetryDropped() {
	if m == nil {
		return
	}
	m.telemetryDropped.Inc()
}

// promLogger adapts slog to promhttp.Logger
type promLogger struct {
	logger *slog.Logger
}

func (l promLogger) Println(v ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Error("metrics handler error", "detail", fmt.Sprint(v...))
}
