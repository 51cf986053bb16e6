package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records outbound calls made against the analytics backend.
type APIMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	expired  prometheus.Counter
}

// NewAPIMetrics registers the backend request metrics on the provided registerer.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopdash_api_request_duration_seconds",
		Help:    "Duration of backend API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shopdash_api_requests_total",
		Help: "Backend API requests by route and status class.",
	}, []string{"route", "status"})
	expired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shopdash_session_expired_total",
		Help: "Sessions force-expired by a 401 from the backend.",
	})
	reg.MustRegister(duration, requests, expired)
	return &APIMetrics{
		duration: duration,
		requests: requests,
		expired:  expired,
	}
}

// Observe records one completed request. A zero status means the transport failed.
func (m *APIMetrics) Observe(route string, status int, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	label := normalizeLabel(route)
	m.duration.WithLabelValues(label).Observe(duration.Seconds())
	m.requests.WithLabelValues(label, StatusClass(status)).Inc()
}

// IncExpired counts a forced logout.
func (m *APIMetrics) IncExpired() {
	if m == nil || m.expired == nil {
		return
	}
	m.expired.Inc()
}

// StatusClass buckets an HTTP status into 2xx/3xx/4xx/5xx, keeping 401 distinct.
func StatusClass(status int) string {
	switch {
	case status <= 0:
		return "error"
	case status == 401:
		return "401"
	default:
		return strconv.Itoa(status/100) + "xx"
	}
}

func normalizeLabel(route string) string {
	if route == "" {
		return "unknown"
	}
	return route
}
