package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Event outcomes recorded on teams_notifier_events_total
const (
	outcomeProcessed    = "processed"
	outcomeUnrecognized = "unrecognized"
	outcomeNoRecipients = "no_recipients"
	outcomeInvalid      = "invalid"
	outcomeIgnored      = "ignored"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teams_notifier_events_total",
			Help: "Inbound webhook events by source, classified kind and outcome.",
		},
		[]string{"source", "kind", "outcome"},
	)
	deliveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teams_notifier_delivery_total",
			Help: "Teams card deliveries by recipient role and status.",
		},
		[]string{"role", "status"},
	)
)
