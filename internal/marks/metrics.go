package marks

import "github.com/prometheus/client_golang/prometheus"

// Metrics records import outcomes. A nil *Metrics is valid and records nothing.
type Metrics struct {
	runs *prometheus.CounterVec
	rows *prometheus.CounterVec
}

// NewMetrics registers the import collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditmarks",
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Spreadsheet import runs by result.",
		}, []string{"result"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "auditmarks",
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Spreadsheet rows processed by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.runs, m.rows)
	return m
}

func (m *Metrics) run(result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
}

func (m *Metrics) observe(r *ImportResult) {
	if m == nil {
		return
	}
	m.rows.WithLabelValues("imported").Add(float64(r.MarksImported))
	m.rows.WithLabelValues("white").Add(float64(r.MarksSkippedWhite))
	m.rows.WithLabelValues("yellow").Add(float64(r.MarksSkippedYellow))
	m.rows.WithLabelValues("invalid").Add(float64(r.MarksSkippedInvalid))
}
