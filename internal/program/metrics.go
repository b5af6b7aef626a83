package program

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts engine activity. A nil *Metrics records nothing.
type Metrics struct {
	operations    *prometheus.CounterVec
	renumbers     *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

// NewMetrics creates the engine collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liftplan",
			Name:      "operations_total",
			Help:      "Program edit operations processed, by target, op and status.",
		}, []string{"target", "op", "status"}),
		renumbers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liftplan",
			Name:      "renumber_writes_total",
			Help:      "Exercise number writes issued by reconciliation, by result.",
		}, []string{"result"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "liftplan",
			Name:      "batch_duration_seconds",
			Help:      "Time to apply one edit batch including reconciliation.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.operations, m.renumbers, m.batchDuration)
	return m
}

func (m *Metrics) observeOutcome(o Outcome) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(targetLabel(o.Target), kindLabel(o.Op), string(o.Status)).Inc()
}

// unknownLabel replaces caller-supplied target and op strings that do not
// name a real operation, keeping label cardinality fixed.
const unknownLabel = "unknown"

func targetLabel(t Target) string {
	switch t {
	case TargetWeek, TargetDay, TargetExercise:
		return string(t)
	}
	return unknownLabel
}

func kindLabel(k Kind) string {
	switch k {
	case KindAdd, KindDelete, KindEdit, KindReorder:
		return string(k)
	}
	return unknownLabel
}

func (m *Metrics) observeRenumber(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.renumbers.WithLabelValues(result).Inc()
}

func (m *Metrics) observeBatch(d time.Duration) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(d.Seconds())
}
