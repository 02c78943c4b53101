package verification

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification engine. All methods
// are nil-safe so tests can run without a registry.
type Metrics struct {
	// Decision outcomes by outcome and action
	Outcomes *prometheus.CounterVec

	// Per-signal evaluation latency
	SignalLatency *prometheus.HistogramVec

	// Overall verify latency including the commit
	VerifyLatency prometheus.Histogram

	// Lock acquisitions that timed out
	LockTimeouts prometheus.Counter
}

// NewMetrics creates a Metrics instance with all engine metrics registered
// on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_gate_decisions_total",
			Help: "Total verification decisions by outcome and action",
		}, []string{"outcome", "action"}),

		SignalLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendance_gate_signal_duration_seconds",
			Help:    "Duration of signal evaluation by source",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"source"}), // source: "load", "face", "location", "commit"

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "attendance_gate_verify_duration_seconds",
			Help:    "Duration of full verification including the commit",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		LockTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "attendance_gate_lock_timeouts_total",
			Help: "Verification attempts that failed fast waiting for the per-employee section",
		}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(outcome Outcome, action string) {
	if m != nil {
		m.Outcomes.WithLabelValues(string(outcome), action).Inc()
	}
}

// ObserveSignalLatency records the duration of one signal evaluation.
func (m *Metrics) ObserveSignalLatency(source string, d time.Duration) {
	if m != nil {
		m.SignalLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// ObserveVerifyLatency records the total verification duration.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

// IncrementLockTimeout records a fast-fail on the per-employee section.
func (m *Metrics) IncrementLockTimeout() {
	if m != nil {
		m.LockTimeouts.Inc()
	}
}
