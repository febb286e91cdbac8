package database

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name      string
		failFirst int
		wantErr   bool
		wantCalls int
	}{
		{name: "first attempt succeeds", failFirst: 0, wantCalls: 1},
		{name: "succeeds after failures", failFirst: 2, wantCalls: 3},
		{name: "gives up", failFirst: 10, wantErr: true, wantCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			boom := errors.New("connection refused")
			err := RetryWithBackoff(func() error {
				calls++
				if calls <= tt.failFirst {
					return boom
				}
				return nil
			}, 3, time.Millisecond, zap.NewNop(), "Redis connection")

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, boom)
				assert.Contains(t, err.Error(), "Redis connection failed after 3 attempts")
				return
			}
			require.NoError(t, err)
		})
	}
}
