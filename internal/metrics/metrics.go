// Package metrics holds the server's prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courier_messages_sent_total",
		Help: "Messages accepted by the send endpoint.",
	})

	NotificationsFannedOut = promauto.NewCounter(prometheus.CounterOpts{
		Name: "courier_notifications_fanned_out_total",
		Help: "Notification rows created, counting each fanned-out recipient.",
	})
)
