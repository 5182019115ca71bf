package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Elahizes/spin-wheel/internal/domain"
)

// FeedMetrics tracks live feed attachments. It implements feed.Observer.
type FeedMetrics struct {
	ActiveAttachments  *prometheus.GaugeVec
	SnapshotsDelivered *prometheus.CounterVec
	DeliveryErrors     *prometheus.CounterVec
}

func NewFeedMetrics(reg prometheus.Registerer) *FeedMetrics {
	m := &FeedMetrics{
		ActiveAttachments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "active_attachments",
			Help:      "Number of running live query attachments, by feed.",
		}, []string{"feed"}),
		SnapshotsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "snapshots_delivered_total",
			Help:      "Total number of snapshots pushed to feed consumers, by feed.",
		}, []string{"feed"}),
		DeliveryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "delivery_errors_total",
			Help:      "Total number of errors pushed to feed consumers, by feed.",
		}, []string{"feed"}),
	}

	reg.MustRegister(m.ActiveAttachments, m.SnapshotsDelivered, m.DeliveryErrors)
	return m
}

func (m *FeedMetrics) AttachmentOpened(name domain.FeedName) {
	m.ActiveAttachments.WithLabelValues(string(name)).Inc()
}

func (m *FeedMetrics) AttachmentClosed(name domain.FeedName) {
	m.ActiveAttachments.WithLabelValues(string(name)).Dec()
}

func (m *FeedMetrics) SnapshotDelivered(name domain.FeedName) {
	m.SnapshotsDelivered.WithLabelValues(string(name)).Inc()
}

func (m *FeedMetrics) DeliveryFailed(name domain.FeedName) {
	m.DeliveryErrors.WithLabelValues(string(name)).Inc()
}
