// Package metrics holds the Prometheus collectors for backend traffic and
// tab synchronization.
//
// Safe for concurrent use by multiple goroutines.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tabkeeper"

// Result label values.
const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultSaved    = "saved"
	ResultSent     = "sent"
	ResultFailed   = "failed"
	ResultStale    = "stale"
)

// Metrics owns a dedicated registry so tests and embedders never collide
// with the global default registry.
type Metrics struct {
	registry *prometheus.Registry

	tabFetches      *prometheus.CounterVec
	tabSaves        *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tabFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tab_fetch_total",
			Help:      "Tab fetches by result (found, not_found, failed, stale).",
		}, []string{"result"}),
		tabSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tab_save_total",
			Help:      "Tab saves by result (saved, failed).",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_total",
			Help:      "Tab-updated notifications attempted, by result (sent, failed).",
		}, []string{"result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of backend HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(m.tabFetches, m.tabSaves, m.notifications, m.requestDuration)
	return m
}

// TabFetched counts one tab fetch.
func (m *Metrics) TabFetched(result string) {
	m.tabFetches.WithLabelValues(result).Inc()
}

// TabSaved counts one tab save.
func (m *Metrics) TabSaved(result string) {
	m.tabSaves.WithLabelValues(result).Inc()
}

// Notified counts one notification attempt.
func (m *Metrics) Notified(result string) {
	m.notifications.WithLabelValues(result).Inc()
}

// ObserveRequest records a backend request. A status of 0 means the request
// never got a response.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requestDuration.WithLabelValues(method, label).Observe(d.Seconds())
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the registry in the Prometheus
// text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
