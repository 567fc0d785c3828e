package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNoop    = "noop"
)

// ReservationMetrics records counters and latencies for reservation
// operations (submit, item update, group update, release).
type ReservationMetrics struct {
	operations    *prometheus.CounterVec
	remoteLatency *prometheus.HistogramVec
}

// NewReservationMetrics registers the reservation metrics on the provided
// registerer. A nil registerer yields a no-op recorder, used by tests.
func NewReservationMetrics(reg prometheus.Registerer) *ReservationMetrics {
	if reg == nil {
		return &ReservationMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_operations_total",
		Help: "Reservation operations by kind and outcome.",
	}, []string{"operation", "outcome"})
	remoteLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reservation_remote_seconds",
		Help:    "Latency of calls to the reservation server.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	reg.MustRegister(operations, remoteLatency)
	return &ReservationMetrics{
		operations:    operations,
		remoteLatency: remoteLatency,
	}
}

// IncOperation bumps the counter for one operation outcome.
func (m *ReservationMetrics) IncOperation(operation, outcome string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// ObserveRemote records the latency of one reservation-server call.
func (m *ReservationMetrics) ObserveRemote(endpoint string, duration time.Duration) {
	if m == nil || m.remoteLatency == nil {
		return
	}
	m.remoteLatency.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
