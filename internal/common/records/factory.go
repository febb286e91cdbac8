package records

import (
	"database/sql"
	"fmt"

	"dining-concierge/internal/common/config"
	"dining-concierge/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// New builds the record store named by cfg.Driver, wrapped in the Redis
// cache when cfg.Cache.Enabled.
func New(cfg config.RecordsConfig, dynamo DynamoDBAPI, db *sql.DB, rdb redis.Cmdable, log logger.Logger) (Store, error) {
	var store Store
	switch cfg.Driver {
	case config.RecordsDriverDynamoDB:
		if dynamo == nil {
			return nil, fmt.Errorf("records driver %q needs a DynamoDB client", cfg.Driver)
		}
		store = NewDynamoDBStore(dynamo, cfg.DynamoDBTable)
	case config.RecordsDriverPostgres:
		if db == nil {
			return nil, fmt.Errorf("records driver %q needs a database", cfg.Driver)
		}
		store = NewPostgresStore(db, cfg.PostgresTable)
	default:
		return nil, fmt.Errorf("unknown records driver %q", cfg.Driver)
	}

	if !cfg.Cache.Enabled {
		return store, nil
	}
	if rdb == nil {
		return nil, fmt.Errorf("records cache needs a Redis client")
	}
	return NewCachedStore(store, rdb, config.GetDuration(cfg.Cache.TTL), log), nil
}
