package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AttemptsChecked *prometheus.CounterVec
	StoreErrors     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		AttemptsChecked: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docverify_ratelimit_attempts_total",
			Help: "Verification attempt checks by limited operation and outcome",
		}, []string{"operation", "outcome"}), // outcome: "allowed", "denied"
		StoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "docverify_ratelimit_store_errors_total",
			Help: "Bucket store failures while checking attempt limits",
		}),
	}
}

func (m *Metrics) RecordAttempt(operation string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "allowed"
	if !allowed {
		outcome = "denied"
	}
	m.AttemptsChecked.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) IncrementStoreErrors() {
	if m != nil {
		m.StoreErrors.Inc()
	}
}
