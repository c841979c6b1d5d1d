package resolve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// outcomeInvalid labels calls rejected before lookup.
const outcomeInvalid = "invalid"

// OutcomesMetric is the fully qualified name of the outcome counter.
const OutcomesMetric = "mixlab_resolve_outcomes_total"

// Metrics counts resolution outcomes.
type Metrics struct {
	outcomes *prometheus.CounterVec
	defects  prometheus.Counter
}

// NewMetrics registers the resolver collectors with reg. A nil reg
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mixlab",
			Subsystem: "resolve",
			Name:      "outcomes_total",
			Help:      "Resolution attempts by outcome.",
		}, []string{"outcome"}),
		defects: f.NewCounter(prometheus.CounterOpts{
			Namespace: "mixlab",
			Subsystem: "resolve",
			Name:      "config_defects_total",
			Help:      "Lookups that found no rule, indicating a catalog and table mismatch.",
		}),
	}
}

func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
	if outcome == string(KindNotFound) {
		m.defects.Inc()
	}
}
