// Package queue carries completed dining requests from the dialog hook to the
// fulfillment worker. Delivery is at-least-once: a received message stays
// invisible for the visibility timeout and reappears unless deleted.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dining-concierge/internal/models"
)

// ErrEmpty is returned by ReceiveOne when no message became available.
var ErrEmpty = errors.New("queue: no message available")

// Message is one received delivery. ReceiptHandle is only valid for this
// delivery and is what Delete expects.
type Message struct {
	ID            string
	Body          []byte
	ReceiptHandle string
	ReceiveCount  int
}

// Producer is the dialog hook's view of the queue.
type Producer interface {
	Enqueue(ctx context.Context, req models.CanonicalRequest) (string, error)
}

// Consumer is the fulfillment worker's view of the queue.
type Consumer interface {
	// ReceiveOne waits up to wait for a message. A zero wait polls once.
	ReceiveOne(ctx context.Context, wait time.Duration) (*Message, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type Queue interface {
	Producer
	Consumer
}

func encode(req models.CanonicalRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return body, nil
}
