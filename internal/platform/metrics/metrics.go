package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the HTTP gateway
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	FailuresTotal     *prometheus.CounterVec
	UnauthorizedTotal prometheus.Counter
	RequestDuration   prometheus.Histogram
}

// New creates and registers all gateway metrics on the default registry
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers on a caller-provided registry; tests pass a fresh one so
// repeated construction does not panic on duplicate registration.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agrofarm_client_requests_total",
			Help: "Total number of requests issued by the HTTP gateway",
		}, []string{"method"}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agrofarm_client_request_failures_total",
			Help: "Total number of failed requests, by status code (or 'transport')",
		}, []string{"status"}),
		UnauthorizedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "agrofarm_client_unauthorized_total",
			Help: "Total number of 401 responses seen by the gateway",
		}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "agrofarm_client_request_duration_seconds",
			Help:    "Latency of gateway requests",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveRequest records one completed request. A statusCode of zero means the
// request never produced a response (transport failure).
func (m *Metrics) ObserveRequest(method string, statusCode int, elapsed time.Duration) {
	m.RequestsTotal.WithLabelValues(method).Inc()
	m.RequestDuration.Observe(elapsed.Seconds())

	if statusCode != 0 && statusCode < 400 {
		return
	}
	status := "transport"
	if statusCode != 0 {
		status = strconv.Itoa(statusCode)
	}
	m.FailuresTotal.WithLabelValues(status).Inc()
	if statusCode == http.StatusUnauthorized {
		m.UnauthorizedTotal.Inc()
	}
}
