package records

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "restaurant:"

// CachedStore is a read-through cache in front of another Store. Cache
// failures are logged and fall through; misses are not cached.
type CachedStore struct {
	next   Store
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedStore(next Store, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{next: next, redis: rdb, ttl: ttl, logger: log}
}

func (c *CachedStore) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	key := cacheKeyPrefix + id

	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var r models.Restaurant
		if err := json.Unmarshal([]byte(val), &r); err == nil {
			return &r, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("record cache read failed", map[string]interface{}{"id": id, "error": err.Error()})
	}

	r, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(r); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("record cache write failed", map[string]interface{}{"id": id, "error": err.Error()})
		}
	}
	return r, nil
}
