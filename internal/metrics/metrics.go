// Package metrics exposes Prometheus instrumentation for report building and
// the HTTP API on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "franchise_performance"

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reportDuration  *prometheus.HistogramVec
	insights        *prometheus.CounterVec
	reportFailures  *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		reportDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "report_build_duration_seconds",
				Help:      "Duration of franchise report and comparison builds in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		insights: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "insights_emitted_total",
				Help:      "Total number of insights emitted by severity",
			},
			[]string{"severity"},
		),
		reportFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_failures_total",
				Help:      "Total number of report builds that failed by reason",
			},
			[]string{"kind", "reason"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.reportDuration,
		m.insights,
		m.reportFailures,
	)
	return m
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records a finished HTTP request.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveReport records how long a report of the given kind took to build.
func (m *Metrics) ObserveReport(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.reportDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ReportFailed counts a failed report build.
func (m *Metrics) ReportFailed(kind, reason string) {
	if m == nil {
		return
	}
	m.reportFailures.WithLabelValues(kind, reason).Inc()
}

// InsightEmitted counts an insight by severity.
func (m *Metrics) InsightEmitted(severity string) {
	if m == nil {
		return
	}
	m.insights.WithLabelValues(severity).Inc()
}
