package restserver

import (
	"github.com/chrissnell/permafrost/internal/thermal"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics are kept in a per-controller registry so that several controllers
// can live in one process
type metrics struct {
	registry      *prometheus.Registry
	evaluations   *prometheus.CounterVec
	nonComputable prometheus.Counter
	sweepSize     prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "permafrost",
			Name:      "evaluations_total",
			Help:      "Model evaluations by mineral-layer regime.",
		}, []string{"regime"}),
		nonComputable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "permafrost",
			Name:      "noncomputable_evaluations_total",
			Help:      "Model evaluations that produced NaN outputs.",
		}),
		sweepSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "permafrost",
			Name:      "sweep_points",
			Help:      "Number of grid points per sweep request.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	m.registry.MustRegister(m.evaluations, m.nonComputable, m.sweepSize)
	return m
}

func (m *metrics) observe(out thermal.Outputs) {
	m.evaluations.WithLabelValues(out.Regime.String()).Inc()
	if !out.Computable() {
		m.nonComputable.Inc()
	}
}
