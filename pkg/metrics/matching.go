package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "garmentz"

// MatchingMetrics tracks assignment outcomes and the scores that drove them.
type MatchingMetrics struct {
	assignments *prometheus.CounterVec
	scores      *prometheus.HistogramVec
	poolSize    prometheus.Gauge
}

// NewMatchingMetrics registers the matching metrics on the provided registerer.
func NewMatchingMetrics(reg prometheus.Registerer) *MatchingMetrics {
	if reg == nil {
		return &MatchingMetrics{}
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_assignments_total",
		Help:      "Quote assignment attempts by mode and outcome.",
	}, []string{"mode", "outcome"})
	scores := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "match_score",
		Help:      "Score of the supplier picked for an assigned quote.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	}, []string{"mode"})
	poolSize := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "eligible_suppliers",
		Help:      "Eligible suppliers seen by the last ranking pass.",
	})
	reg.MustRegister(assignments, scores, poolSize)
	return &MatchingMetrics{
		assignments: assignments,
		scores:      scores,
		poolSize:    poolSize,
	}
}

// IncAssignment counts one assignment attempt.
func (m *MatchingMetrics) IncAssignment(mode, outcome string) {
	if m == nil || m.assignments == nil {
		return
	}
	m.assignments.WithLabelValues(normalizeLabel(mode), normalizeLabel(outcome)).Inc()
}

// ObserveScore records the score of an assigned match.
func (m *MatchingMetrics) ObserveScore(mode string, score int) {
	if m == nil || m.scores == nil {
		return
	}
	m.scores.WithLabelValues(normalizeLabel(mode)).Observe(float64(score))
}

// SetPoolSize records the size of the eligible supplier pool.
func (m *MatchingMetrics) SetPoolSize(size int) {
	if m == nil || m.poolSize == nil {
		return
	}
	m.poolSize.Set(float64(size))
}
