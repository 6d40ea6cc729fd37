// Package metrics provides Prometheus metrics for the chat-api service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks the number of live WebSocket connections.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_connections",
			Help: "Number of currently connected WebSocket clients",
		},
	)

	// OnlineUsers tracks the number of distinct identities with at least one connection.
	OnlineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_online_users",
			Help: "Number of distinct users with at least one live connection",
		},
	)

	// IntentsReceived tracks inbound client intents by kind.
	IntentsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_intents_received_total",
			Help: "Total number of client intents received",
		},
		[]string{"intent"},
	)

	// MessagesRelayed tracks chat messages persisted and broadcast.
	MessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_relayed_total",
			Help: "Total number of chat messages persisted and broadcast",
		},
	)

	// MessagesFailed tracks send attempts rejected or failed before broadcast.
	MessagesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_failed_total",
			Help: "Total number of chat messages that were not relayed",
		},
		[]string{"reason"},
	)

	// BroadcastFanout observes how many connections each room broadcast reached.
	BroadcastFanout = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_broadcast_fanout",
			Help:    "Number of connections reached per room broadcast",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
		},
	)

	// SignalsForwarded tracks call-signaling envelopes forwarded by kind.
	SignalsForwarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_signals_forwarded_total",
			Help: "Total number of call-signaling envelopes forwarded",
		},
		[]string{"kind"},
	)

	// SignalsDropped tracks signaling envelopes dropped because the target was offline.
	SignalsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_signals_dropped_total",
			Help: "Total number of call-signaling envelopes dropped (target offline)",
		},
		[]string{"kind"},
	)

	// HTTPRequestDuration tracks REST endpoint latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// PersistDuration tracks message persistence latency.
	PersistDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_message_persist_duration_seconds",
			Help:    "Duration of message persistence writes",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordConnect increments connection gauges.
func RecordConnect(firstForUser bool) {
	ActiveConnections.Inc()
	if firstForUser {
		OnlineUsers.Inc()
	}
}

// RecordDisconnect decrements connection gauges.
func RecordDisconnect(lastForUser bool) {
	ActiveConnections.Dec()
	if lastForUser {
		OnlineUsers.Dec()
	}
}

// RecordMessageRelayed records a successful persist-and-broadcast.
func RecordMessageRelayed(fanout int) {
	MessagesRelayed.Inc()
	BroadcastFanout.Observe(float64(fanout))
}

// RecordMessageFailed records a send that never reached broadcast.
func RecordMessageFailed(reason string) {
	MessagesFailed.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records one completed REST request.
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration)
}

// RecordSignal records a forwarded or dropped signaling envelope.
func RecordSignal(kind string, delivered bool) {
	if delivered {
		SignalsForwarded.WithLabelValues(kind).Inc()
	} else {
		SignalsDropped.WithLabelValues(kind).Inc()
	}
}
