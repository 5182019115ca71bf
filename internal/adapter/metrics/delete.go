package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeleteMetrics tracks bulk spin deletion. It implements app.DeleteMetrics.
type DeleteMetrics struct {
	ChunksCommitted prometheus.Counter
	SpinsDeleted    prometheus.Counter
	CommitFailures  prometheus.Counter
	AuditFailures   prometheus.Counter
	Duration        prometheus.Histogram
}

func NewDeleteMetrics(reg prometheus.Registerer) *DeleteMetrics {
	m := &DeleteMetrics{
		ChunksCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delete",
			Name:      "chunks_committed_total",
			Help:      "Total number of delete chunks committed.",
		}),
		SpinsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delete",
			Name:      "spins_total",
			Help:      "Total number of spin ids submitted in committed chunks.",
		}),
		CommitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delete",
			Name:      "commit_failures_total",
			Help:      "Total number of delete chunks rejected by the store.",
		}),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "delete",
			Name:      "audit_failures_total",
			Help:      "Total number of deletion audit records that could not be published.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "delete",
			Name:      "duration_seconds",
			Help:      "Duration of completed bulk delete requests.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}

	reg.MustRegister(m.ChunksCommitted, m.SpinsDeleted, m.CommitFailures, m.AuditFailures, m.Duration)
	return m
}

func (m *DeleteMetrics) ChunkCommitted(size int) {
	m.ChunksCommitted.Inc()
	m.SpinsDeleted.Add(float64(size))
}

func (m *DeleteMetrics) CommitFailed() { m.CommitFailures.Inc() }
func (m *DeleteMetrics) AuditFailed()  { m.AuditFailures.Inc() }

func (m *DeleteMetrics) ObserveDeleteDuration(d time.Duration) {
	m.Duration.Observe(d.Seconds())
}
