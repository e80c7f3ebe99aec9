// Package metrics provides Prometheus instrumentation for the realtime
// layer: connection counts, message throughput and dropped pushes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsActive tracks the current number of live websocket
	// connections.
	ConnectionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kotoba_ws_connections_active",
		Help: "Current number of active WebSocket connections",
	})

	// MessagesTotal counts chat messages by outcome: "sent" (persisted and
	// fanned out) or "rejected" (validation failure).
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kotoba_chat_messages_total",
		Help: "Total number of chat messages processed",
	}, []string{"result"})

	// PushesDropped counts realtime frames dropped because a client's send
	// buffer was full.
	PushesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kotoba_ws_pushes_dropped_total",
		Help: "Total number of outbound frames dropped on full client buffers",
	})

	// PresenceBroadcasts counts full online-user list broadcasts.
	PresenceBroadcasts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kotoba_presence_broadcasts_total",
		Help: "Total number of presence list broadcasts",
	})
)

func init() {
	prometheus.MustRegister(
		ConnectionsActive,
		MessagesTotal,
		PushesDropped,
		PresenceBroadcasts,
	)
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
