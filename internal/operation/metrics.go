package operation

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector records Prometheus metrics for executed operations.
// A nil *MetricsCollector is valid and records nothing.
type MetricsCollector struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewMetricsCollector creates a collector and registers it with reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &MetricsCollector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conductor_miniflux_requests_total",
				Help: "Total number of Miniflux API requests by operation and HTTP status",
			},
			[]string{"operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conductor_miniflux_request_duration_seconds",
				Help:    "Duration of Miniflux API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conductor_miniflux_failures_total",
				Help: "Total failed operations by error type",
			},
			[]string{"operation", "error_type"},
		),
	}

	reg.MustRegister(m.requests, m.duration, m.failures)
	return m
}

// RecordRequest records a completed HTTP round trip.
func (m *MetricsCollector) RecordRequest(operationName string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operationName, strconv.Itoa(statusCode)).Inc()
	m.duration.WithLabelValues(operationName).Observe(duration.Seconds())
}

// RecordFailure records an operation that ended in an error.
func (m *MetricsCollector) RecordFailure(operationName string, errType ErrorType) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(operationName, string(errType)).Inc()
}
