package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/models"
)

// PostgresStore reads the restaurants table.
type PostgresStore struct {
	db    *sql.DB
	query string
}

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{
		db: db,
		query: fmt.Sprintf(
			`SELECT business_id, name, address, rating, review_count FROM %s WHERE business_id = $1`,
			table,
		),
	}
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	var r models.Restaurant
	err := s.db.QueryRowContext(ctx, s.query, id).Scan(
		&r.ID, &r.Name, &r.Address, &r.Rating, &r.ReviewCount,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewRecordStoreUnavailableError("query", err)
	}
	return &r, nil
}
