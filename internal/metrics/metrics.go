package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 投递管道指标
var (
	AutoMessagesPlanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelab_automessages_planned_total",
			Help: "Total auto messages created by the planner",
		},
	)

	AutoMessagesQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelab_automessages_queued_total",
			Help: "Total auto messages published to the main queue",
		},
	)

	MessagesDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelab_messages_delivered_total",
			Help: "Total queued messages persisted and delivered",
		},
	)

	DeliveriesRetried = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelab_deliveries_retried_total",
			Help: "Total deliveries pushed to the retry queue",
		},
	)

	DeliveriesDead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelab_deliveries_dead_total",
			Help: "Total deliveries dropped after exhausting retries",
		},
	)

	DeliveriesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelab_deliveries_dropped_total",
			Help: "Total malformed payloads dropped without retry",
		},
	)
)

// 网关指标
var (
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodelab_ws_connections",
			Help: "Currently open websocket connections",
		},
	)

	LiveMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nodelab_live_messages_sent_total",
			Help: "Total messages persisted through the live chat path",
		},
	)
)
