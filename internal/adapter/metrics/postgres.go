package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PostgresMetrics tracks principal and catalogue queries.
type PostgresMetrics struct {
	QueryDuration *prometheus.HistogramVec
	QueryErrors   *prometheus.CounterVec
}

func NewPostgresMetrics(reg prometheus.Registerer) *PostgresMetrics {
	m := &PostgresMetrics{
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "postgres",
			Name:      "query_duration_seconds",
			Help:      "Duration of PostgreSQL queries, by statement.",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"statement"}),
		QueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "postgres",
			Name:      "query_errors_total",
			Help:      "Total failed PostgreSQL queries, by statement.",
		}, []string{"statement"}),
	}

	reg.MustRegister(m.QueryDuration, m.QueryErrors)
	return m
}

func (m *PostgresMetrics) ObserveQuery(statement string, d time.Duration, failed bool) {
	m.QueryDuration.WithLabelValues(statement).Observe(d.Seconds())
	if failed {
		m.QueryErrors.WithLabelValues(statement).Inc()
	}
}
