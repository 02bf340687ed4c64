// Package metrics provides Prometheus instrumentation for the marketplace core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesSent counts chat messages by type.
	MessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Chat messages appended, by message type",
		},
		[]string{"type"},
	)

	// ConversationMetadataFailures counts sends whose second write (conversation update) failed.
	ConversationMetadataFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_conversation_metadata_failures_total",
			Help: "Message sends whose conversation metadata update failed",
		},
	)

	// OfferAcceptances counts accept-offer attempts by outcome code.
	OfferAcceptances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_acceptances_total",
			Help: "Accept-offer attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Reports counts submitted reports by outcome.
	Reports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "item_reports_total",
			Help: "Listing reports by outcome",
		},
		[]string{"outcome"},
	)

	// TransactionAttempts counts store transaction attempts, labelled by result.
	TransactionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_transaction_attempts_total",
			Help: "Document store transaction attempts",
		},
		[]string{"result"},
	)

	// ActiveSubscriptions tracks open live subscriptions.
	ActiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "live_subscriptions_active",
			Help: "Number of open live subscriptions",
		},
		[]string{"kind"},
	)
)
