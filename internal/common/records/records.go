// Package records resolves a restaurant id to its full record.
package records

import (
	"context"
	"errors"

	"dining-concierge/internal/models"
)

// ErrNotFound is returned when the id has no record. It is a normal miss,
// not an upstream failure.
var ErrNotFound = errors.New("records: restaurant not found")

type Store interface {
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
}
