package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendorchat_messages_sent_total",
			Help: "Total number of messages sent, by kind",
		},
		[]string{"kind"},
	)

	messagesReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vendorchat_messages_received_total",
			Help: "Total number of message broadcasts received",
		},
	)

	duplicateBroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vendorchat_duplicate_broadcasts_total",
			Help: "Broadcasts dropped by the idempotent timeline append",
		},
	)

	reconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vendorchat_reconnects_total",
			Help: "Transport reconnection cycles observed",
		},
	)

	uploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vendorchat_upload_bytes_total",
			Help: "Attachment bytes successfully uploaded",
		},
	)

	uploadFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vendorchat_upload_failures_total",
			Help: "Per-file attachment upload failures",
		},
	)

	counterpartTyping = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vendorchat_counterpart_typing",
			Help: "Whether the active conversation's counterpart is typing",
		},
	)

	conversationsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vendorchat_conversations_loaded",
			Help: "Conversations fetched for this session",
		},
	)
)
