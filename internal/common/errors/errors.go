// Package errors provides the structured error type shared by the dialog hook,
// the relay and the fulfillment pipeline.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeSlotValidationFailed ErrorCode = "SLOT_VALIDATION_FAILED"
	ErrCodeUnknownIntent        ErrorCode = "UNKNOWN_INTENT"
	ErrCodeRequestIncomplete    ErrorCode = "REQUEST_INCOMPLETE"

	ErrCodeQueueUnavailable       ErrorCode = "QUEUE_UNAVAILABLE"
	ErrCodeSearchUnavailable      ErrorCode = "SEARCH_UNAVAILABLE"
	ErrCodeRecordStoreUnavailable ErrorCode = "RECORD_STORE_UNAVAILABLE"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeNLUUnavailable         ErrorCode = "NLU_UNAVAILABLE"

	ErrCodeMalformedMessage ErrorCode = "MALFORMED_MESSAGE"
	ErrCodeTimeout          ErrorCode = "TIMEOUT"
)

// Error categories.
const (
	CategoryValidation          = "VALIDATION"
	CategoryUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CategoryMalformedMessage    = "MALFORMED_MESSAGE"
	CategoryUnknownIntent       = "UNKNOWN_INTENT"
	CategoryOther               = "OTHER"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewSlotValidationError records a user input problem. It never leaves the
// dialog hook; the hook turns it into a corrective prompt.
func NewSlotValidationError(slot, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSlotValidationFailed,
		Message:   message,
		Details:   fmt.Sprintf("slot: %s", slot),
		Retryable: false,
		Metadata:  map[string]interface{}{"slot": slot},
		Timestamp: time.Now().UTC(),
	}
}

func NewUnknownIntentError(intent string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownIntent,
		Message:   "Intent is not handled",
		Details:   fmt.Sprintf("intent: %s", intent),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewRequestIncompleteError(missing string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestIncomplete,
		Message:   "Required slot missing at completion",
		Details:   fmt.Sprintf("slot: %s", missing),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewQueueUnavailableError(op string, err error) *StandardError {
	return upstream(ErrCodeQueueUnavailable, "Request queue call failed", op, err)
}

func NewSearchUnavailableError(op string, err error) *StandardError {
	return upstream(ErrCodeSearchUnavailable, "Search index call failed", op, err)
}

func NewRecordStoreUnavailableError(op string, err error) *StandardError {
	return upstream(ErrCodeRecordStoreUnavailable, "Record store call failed", op, err)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return upstream(ErrCodeNotificationSendFailed, "Notification delivery failed", channel, err)
}

func NewNLUUnavailableError(err error) *StandardError {
	return upstream(ErrCodeNLUUnavailable, "Language engine call failed", "recognize", err)
}

// NewMalformedMessageError is not retryable: the body will not parse on redelivery either.
func NewMalformedMessageError(messageID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedMessage,
		Message:   "Queue message could not be decoded",
		Details:   fmt.Sprintf("messageId: %s, error: %v", messageID, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"messageId": messageID},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Operation '%s' timed out", op),
		Details:   errDetails(err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// upstream builds a retryable error; a deadline overrun is reported as TIMEOUT.
func upstream(code ErrorCode, message, op string, err error) *StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(op, err)
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   fmt.Sprintf("op: %s, error: %s", op, errDetails(err)),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryableErrorCode reports whether redelivery may succeed.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeQueueUnavailable,
		ErrCodeSearchUnavailable,
		ErrCodeRecordStoreUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeNLUUnavailable,
		ErrCodeTimeout:
		return true
	default:
		return false
	}
}

// GetErrorCategory maps a code onto the pipeline's error taxonomy.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeSlotValidationFailed, ErrCodeRequestIncomplete:
		return CategoryValidation
	case ErrCodeQueueUnavailable,
		ErrCodeSearchUnavailable,
		ErrCodeRecordStoreUnavailable,
		ErrCodeNotificationSendFailed,
		ErrCodeNLUUnavailable,
		ErrCodeTimeout:
		return CategoryUpstreamUnavailable
	case ErrCodeMalformedMessage:
		return CategoryMalformedMessage
	case ErrCodeUnknownIntent:
		return CategoryUnknownIntent
	default:
		return CategoryOther
	}
}

// CodeOf extracts the ErrorCode from anything wrapping a StandardError.
func CodeOf(err error) (ErrorCode, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code, true
	}
	return "", false
}

// IsRetryable reports whether err wraps a retryable StandardError.
func IsRetryable(err error) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return false
}
