package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Outbound messages partitioned by channel (sms, email, whatsapp, softphone) and outcome
	outboundMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_outbound_messages_total",
			Help: "Total number of outbound debtor communications",
		},
		[]string{"channel", "status"},
	)

	// Telephony webhook deliveries partitioned by result
	webhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_webhook_events_total",
			Help: "Total number of telephony webhook deliveries",
		},
		[]string{"result"},
	)
)

// RecordWebhookEvent counts a webhook delivery: stored, rejected or error
func RecordWebhookEvent(result string) {
	webhookEventsTotal.WithLabelValues(result).Inc()
}

func recordOutbound(channel string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	outboundMessagesTotal.WithLabelValues(channel, status).Inc()
}
