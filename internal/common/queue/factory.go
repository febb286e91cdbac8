package queue

import (
	"fmt"

	"dining-concierge/internal/common/config"

	"github.com/redis/go-redis/v9"
)

// New builds the queue backend named by cfg.Driver. Only the client for the
// chosen driver needs to be non-nil.
func New(cfg config.QueueConfig, sqsAPI SQSAPI, rdb redis.UniversalClient) (Queue, error) {
	visibility := config.GetDuration(cfg.VisibilityTimeout)
	switch cfg.Driver {
	case config.QueueDriverSQS:
		if sqsAPI == nil {
			return nil, fmt.Errorf("queue driver %q needs an SQS client", cfg.Driver)
		}
		return NewSQSQueue(sqsAPI, cfg.SQSURL, visibility), nil
	case config.QueueDriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("queue driver %q needs a Redis client", cfg.Driver)
		}
		return NewRedisQueue(rdb, cfg.RedisKeyPrefix, visibility), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
	}
}
