// Package telemetry wires Prometheus metrics and OpenTelemetry tracing for
// tool dispatch.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-call outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics registers the dispatch collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolbox",
			Name:      "invocations_total",
			Help:      "Number of dispatched calls by kind, name and outcome.",
		}, []string{"kind", "name", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolbox",
			Name:      "invocation_duration_seconds",
			Help:      "Latency of dispatched calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "name"}),
	}
	for _, c := range []prometheus.Collector{m.invocations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe records one call.
func (m *Metrics) Observe(kind, name, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(kind, name, outcome).Inc()
	m.duration.WithLabelValues(kind, name).Observe(elapsed.Seconds())
}
