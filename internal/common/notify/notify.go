// Package notify delivers the suggestion message to the requester.
package notify

import "context"

// Notifier sends a plain-text message to one recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
