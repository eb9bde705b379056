package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gauges
var (
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meeting_server_active_rooms",
		Help: "Number of rooms with at least one participant",
	})
	ActiveParticipants = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meeting_server_active_participants",
		Help: "Number of participants currently joined to a room",
	})
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meeting_server_active_connections",
		Help: "Number of open websocket connections",
	})
)

// Counters
var (
	JoinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_server_joins_total",
		Help: "Total successful room joins",
	})
	JoinsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_server_joins_rejected_total",
		Help: "Total rejected room joins by reason",
	}, []string{"reason"})
	LeavesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meeting_server_leaves_total",
		Help: "Total room departures by cause",
	}, []string{"cause"})
	SignalsRelayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_server_signals_relayed_total",
		Help: "Total negotiation payloads relayed between peers",
	})
	SignalsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_server_signals_dropped_total",
		Help: "Total negotiation payloads dropped (stale or unknown target)",
	})
	ChatMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_server_chat_messages_total",
		Help: "Total chat messages broadcast",
	})
	BroadcastDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_server_broadcast_drops_total",
		Help: "Total broadcast frames dropped because a recipient queue was full",
	})
	OverflowDisconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_server_overflow_disconnects_total",
		Help: "Total connections terminated because their send queue overflowed",
	})
	BadFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meeting_server_bad_frames_total",
		Help: "Total inbound frames rejected as malformed or unknown",
	})
)

// Histograms
var (
	RoomSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "meeting_server_room_size",
		Help:    "Room occupancy observed at each successful join",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16, 24, 32},
	})
)
