package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DialogActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_actions_total",
			Help: "Dialog hook replies by intent and action",
		},
		[]string{"intent", "action"},
	)

	SlotValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_slot_validation_failures_total",
			Help: "Slots re-elicited because their value was rejected",
		},
		[]string{"slot"},
	)

	RequestsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dining_requests_enqueued_total",
			Help: "Completed conversations placed on the request queue",
		},
		[]string{"status"},
	)

	RelayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_requests_total",
			Help: "Chat messages relayed to the language engine",
		},
		[]string{"status"},
	)

	FulfillmentRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_runs_total",
			Help: "Fulfillment invocations by outcome",
		},
		[]string{"status", "reason"},
	)

	FulfillmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "fulfillment_run_duration_seconds",
			Help: "Duration of one fulfillment invocation in seconds",
		},
		[]string{"status"},
	)

	SuggestionsSent = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fulfillment_suggestions_sent",
			Help:    "Number of suggestions included per notification",
			Buckets: []float64{0, 1, 2, 3, 5},
		},
	)

	FulfillmentActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fulfillment_runs_active",
			Help: "Fulfillment invocations currently in flight",
		},
	)
)
