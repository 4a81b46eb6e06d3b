package analysis

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels of the attempts counter.
const (
	OutcomeOK = "ok"
)

// Metrics are the pipeline's Prometheus collectors.
type Metrics struct {
	Attempts        *prometheus.CounterVec
	Injections      *prometheus.CounterVec
	EstimateSeconds prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexi_analysis_attempts_total",
				Help: "Analysis attempts by outcome (ok or error kind).",
			},
			[]string{"outcome"},
		),
		Injections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nexi_analysis_fallback_injections_total",
				Help: "Fields filled by the fallback injector.",
			},
			[]string{"field"},
		),
		EstimateSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nexi_estimator_duration_seconds",
				Help:    "Duration of external estimation calls.",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80},
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Attempts, m.Injections, m.EstimateSeconds)
	}
	return m
}
