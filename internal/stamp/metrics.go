package stamp

import "github.com/prometheus/client_golang/prometheus"

// Outcomes recorded for each stamping call.
const (
	OutcomeStamped        = "stamped"
	OutcomeSkippedProgram = "skipped_program"
	OutcomeNoMatch        = "no_match"
	OutcomeFailed         = "failed"
)

// Metrics counts stamping outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

// NewMetrics registers the stamping collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditmarks",
			Subsystem: "stamp",
			Name:      "documents_total",
			Help:      "Documents passed through the stamper by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}
	reg.MustRegister(m.outcomes)
	return m
}

func (m *Metrics) record(kind, outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(kind, outcome).Inc()
}
