package records

import (
	"testing"

	"dining-concierge/internal/common/config"
	"dining-concierge/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	rdb, _ := redismock.NewClientMock()
	log := logger.NewNoOpLogger()

	tests := []struct {
		name     string
		cfg      config.RecordsConfig
		wantType interface{}
		wantErr  bool
	}{
		{
			name:     "dynamodb",
			cfg:      config.RecordsConfig{Driver: config.RecordsDriverDynamoDB, DynamoDBTable: "t"},
			wantType: &DynamoDBStore{},
		},
		{
			name:     "postgres",
			cfg:      config.RecordsConfig{Driver: config.RecordsDriverPostgres, PostgresTable: "restaurants"},
			wantType: &PostgresStore{},
		},
		{
			name:     "cached",
			cfg:      config.RecordsConfig{Driver: config.RecordsDriverDynamoDB, Cache: config.CacheConfig{Enabled: true, TTL: 1000}},
			wantType: &CachedStore{},
		},
		{
			name:    "unknown driver",
			cfg:     config.RecordsConfig{Driver: "mongo"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := New(tt.cfg, &MockDynamoDBService{}, db, rdb, log)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, store)
		})
	}

	t.Run("cache without redis", func(t *testing.T) {
		_, err := New(config.RecordsConfig{Driver: config.RecordsDriverDynamoDB, Cache: config.CacheConfig{Enabled: true}},
			&MockDynamoDBService{}, nil, nil, log)
		assert.Error(t, err)
	})
}
