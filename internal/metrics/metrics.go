package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesSent counts persisted chat messages by type.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_messages_sent_total",
		Help: "Number of chat messages persisted.",
	}, []string{"type"})

	// ReactionsToggled counts reaction toggles by resulting action.
	ReactionsToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_reactions_toggled_total",
		Help: "Number of reaction toggles by action (add/remove).",
	}, []string{"action"})

	// BroadcastsSent counts realtime events fanned out to chat rooms.
	BroadcastsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_broadcasts_sent_total",
		Help: "Number of realtime events broadcast to chat subscribers.",
	}, []string{"event"})
)
