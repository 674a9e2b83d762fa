package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for extraction and verification.
type Metrics struct {
	// Per-strategy latency and outcome inside the extraction chain
	StrategyLatency *prometheus.HistogramVec
	StrategyOutcome *prometheus.CounterVec

	// Verification verdicts by status and reason
	VerificationOutcome *prometheus.CounterVec

	// Overall verification latency, extraction included
	VerifyLatency prometheus.Histogram
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return &Metrics{
		StrategyLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docverify_extraction_strategy_duration_seconds",
			Help:    "Duration of extraction strategies by name",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.25, 1, 2.5, 5, 10, 30},
		}, []string{"strategy"}), // strategy: "mrz", "visual", "vision"

		StrategyOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_extraction_strategy_outcomes_total",
			Help: "Extraction strategy outcomes (extracted, invalid, skipped, error)",
		}, []string{"strategy", "outcome"}),

		VerificationOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_verification_outcomes_total",
			Help: "Verification verdicts by status and reason",
		}, []string{"status", "reason"}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "docverify_verification_duration_seconds",
			Help:    "Duration of a full verification including extraction",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// ObserveStrategy records one strategy run. It satisfies extraction.Observer.
func (m *Metrics) ObserveStrategy(strategy, outcome string, d time.Duration) {
	if m != nil {
		m.StrategyLatency.WithLabelValues(strategy).Observe(d.Seconds())
		m.StrategyOutcome.WithLabelValues(strategy, outcome).Inc()
	}
}

// IncrementOutcome records a verification verdict.
func (m *Metrics) IncrementOutcome(status, reason string) {
	if m != nil {
		m.VerificationOutcome.WithLabelValues(status, reason).Inc()
	}
}

// ObserveVerifyLatency records the total verification duration.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}
