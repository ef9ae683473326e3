// Package metrics provides internal metrics collection for backend calls.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector counts backend requests by operation and outcome. A nil
// *Collector is valid and records nothing, so metrics stay optional wiring.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector registers the collectors on the given registerer. Passing a
// fresh prometheus.NewRegistry keeps tests independent; production callers
// typically pass prometheus.DefaultRegisterer.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Total number of backend requests by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Backend request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
	}
}

// Observe records one finished backend call.
func (c *Collector) Observe(op, outcome string, d time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(op, outcome).Inc()
	c.requestDuration.WithLabelValues(op).Observe(d.Seconds())
}
