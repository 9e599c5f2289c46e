package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Request outcomes recorded per endpoint.
const (
	OutcomeOK          = "ok"
	OutcomeTransport   = "transport_error"
	OutcomeApplication = "application_error"
)

// Metrics instruments gateway round trips.
type Metrics struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the gateway collectors on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schoolapp",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Gateway requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "schoolapp",
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Gateway request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg != nil {
		reg.MustRegister(m.requestTotal, m.requestDuration)
	}
	return m
}

// Observe records one completed round trip. Safe on a nil receiver so
// the client can run unmetered.
func (m *Metrics) Observe(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(endpoint, outcome).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
