package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebSocketMetrics holds Prometheus metrics for dashboard connections.
type WebSocketMetrics struct {
	ActiveConnections prometheus.Gauge
	FramesSent        *prometheus.CounterVec
	FramesDropped     prometheus.Counter
	Rejected          *prometheus.CounterVec
}

// NewWebSocketMetrics creates and registers WebSocket metrics on the given registry.
func NewWebSocketMetrics(reg prometheus.Registerer) *WebSocketMetrics {
	m := &WebSocketMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_connections",
			Help:      "Number of active dashboard WebSocket connections.",
		}),
		FramesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "frames_sent_total",
			Help:      "Total number of frames written to dashboard clients, by frame type.",
		}, []string{"type"}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "frames_dropped_total",
			Help:      "Total number of frames dropped because a client was too slow.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "rejected_connections_total",
			Help:      "Total number of refused dashboard connections, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.ActiveConnections, m.FramesSent, m.FramesDropped, m.Rejected)
	return m
}

func (m *WebSocketMetrics) ConnectionOpened()                { m.ActiveConnections.Inc() }
func (m *WebSocketMetrics) ConnectionClosed()                { m.ActiveConnections.Dec() }
func (m *WebSocketMetrics) FrameSent(frameType string)       { m.FramesSent.WithLabelValues(frameType).Inc() }
func (m *WebSocketMetrics) FrameDropped()                    { m.FramesDropped.Inc() }
func (m *WebSocketMetrics) ConnectionRejected(reason string) { m.Rejected.WithLabelValues(reason).Inc() }
