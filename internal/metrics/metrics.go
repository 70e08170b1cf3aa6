package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the portal gateway.
type Metrics struct {
	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	ClientRequestsTotal  *prometheus.CounterVec
	SessionInvalidations prometheus.Counter
	RateLimitedTotal     prometheus.Counter
}

// New initializes and registers the portal metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "edge",
			Name:      "requests_total",
			Help:      "Total number of edge requests by tenant and status.",
		}, []string{"tenant", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "edge",
			Name:      "request_duration_seconds",
			Help:      "Edge request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"tenant"}),
		ClientRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of backend API calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		SessionInvalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "client",
			Name:      "session_invalidations_total",
			Help:      "Total number of sessions cleared after a 401 response.",
		}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "edge",
			Name:      "rate_limited_total",
			Help:      "Total number of auth requests rejected by the rate limiter.",
		}),
	}
}
