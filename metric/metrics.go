// Package metric provides store-scoped Prometheus instrumentation.
// Metrics are registered on a caller-supplied registry so multiple
// stores in one process (e.g. under test) do not collide.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics counts store activity.
type StoreMetrics struct {
	// Writes counts accepted entity and relationship writes.
	Writes prometheus.Counter

	// WritesRejected counts writes rejected at the schema boundary.
	WritesRejected prometheus.Counter

	// Queries counts pattern-query evaluations.
	Queries prometheus.Counter
}

// NewStoreMetrics creates store metrics and registers them on reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stratalign",
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Accepted entity and relationship writes.",
		}),
		WritesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stratalign",
			Subsystem: "store",
			Name:      "writes_rejected_total",
			Help:      "Writes rejected by schema or referential validation.",
		}),
		Queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stratalign",
			Subsystem: "store",
			Name:      "queries_total",
			Help:      "Pattern query evaluations.",
		}),
	}
	reg.MustRegister(m.Writes, m.WritesRejected, m.Queries)
	return m
}
