// Package metricsvc exposes the Prometheus metrics of the API.
package metricsvc

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fitsenior/backend/core/enrollment"
)

type Option func(*Manager)

// WithNamespace sets the namespace prefixed to every metric name.
func WithNamespace(ns string) Option {
	return func(m *Manager) { m.namespace = ns }
}

func WithBuckets(buckets []float64) Option {
	return func(m *Manager) { m.buckets = buckets }
}

// Manager owns a custom registry, so /metrics only shows the API's own metrics.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	enrollments         *prometheus.CounterVec
}

var _ enrollment.Recorder = (*Manager)(nil)

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "fitsenior",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   m.buckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.enrollments = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "enrollments_total",
			Help:      "Enrollment attempts by result",
		},
		[]string{"result"},
	)
	return m
}

// ObserveHTTPRequest records a served request. endpoint should be the route pattern, not the raw path.
func (m *Manager) ObserveHTTPRequest(endpoint, method string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(endpoint, method, code).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, code).Observe(elapsed.Seconds())
}

func (m *Manager) IncEnrollment(result string) {
	m.enrollments.WithLabelValues(result).Inc()
}

func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format of the custom registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
