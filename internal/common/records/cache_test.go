package records

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	calls int
	r     *models.Restaurant
	err   error
}

func (s *stubStore) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	s.calls++
	return s.r, s.err
}

func TestCachedStore(t *testing.T) {
	ttl := time.Hour
	want := &models.Restaurant{ID: "b-1", Name: "Lucali", Address: "575 Henry St", Rating: 4.7, ReviewCount: 900}
	encoded, err := json.Marshal(want)
	require.NoError(t, err)

	t.Run("cache hit skips the store", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		next := &stubStore{}
		mock.ExpectGet("restaurant:b-1").SetVal(string(encoded))

		got, err := NewCachedStore(next, rdb, ttl, logger.NewTestLogger(t)).GetByID(context.Background(), "b-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Zero(t, next.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss reads through and fills", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		next := &stubStore{r: want}
		mock.ExpectGet("restaurant:b-1").RedisNil()
		mock.ExpectSet("restaurant:b-1", encoded, ttl).SetVal("OK")

		got, err := NewCachedStore(next, rdb, ttl, logger.NewTestLogger(t)).GetByID(context.Background(), "b-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, 1, next.calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store miss is not cached", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		next := &stubStore{err: ErrNotFound}
		mock.ExpectGet("restaurant:b-1").RedisNil()

		_, err := NewCachedStore(next, rdb, ttl, logger.NewTestLogger(t)).GetByID(context.Background(), "b-1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis down falls through", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		next := &stubStore{r: want}
		mock.ExpectGet("restaurant:b-1").SetErr(errors.New("redis down"))
		mock.ExpectSet("restaurant:b-1", encoded, ttl).SetErr(errors.New("redis down"))

		got, err := NewCachedStore(next, rdb, ttl, logger.NewTestLogger(t)).GetByID(context.Background(), "b-1")
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
