// internal/workers/fulfillment/dining-suggestions/models.go
package suggestions

type Status string

const (
	StatusNoWork    Status = "no_work"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Outcome reasons. Succeeded runs carry ReasonSent or ReasonNoMatches.
const (
	ReasonSent                   = "sent"
	ReasonNoMatches              = "no_matches"
	ReasonQueueUnavailable       = "queue_unavailable"
	ReasonMalformedMessage       = "malformed_message"
	ReasonSearchUnavailable      = "search_unavailable"
	ReasonRecordStoreUnavailable = "record_store_unavailable"
	ReasonNotificationFailed     = "notification_failed"
	ReasonDeleteFailed           = "delete_failed"
)

// Outcome is the result of one RunOnce.
type Outcome struct {
	Status          Status
	Reason          string
	MessageID       string
	RequestID       string
	SuggestionsSent int
	Err             error
}

// Variables renders the outcome as job variables.
func (o Outcome) Variables() map[string]interface{} {
	vars := map[string]interface{}{
		"status":          string(o.Status),
		"suggestionsSent": o.SuggestionsSent,
	}
	if o.Reason != "" {
		vars["reason"] = o.Reason
	}
	if o.MessageID != "" {
		vars["messageId"] = o.MessageID
	}
	if o.RequestID != "" {
		vars["requestId"] = o.RequestID
	}
	if o.Err != nil {
		vars["error"] = o.Err.Error()
	}
	return vars
}
