// internal/workers/fulfillment/dining-suggestions/config.go
package suggestions

import (
	"time"

	"dining-concierge/internal/common/config"
)

const TaskType = "dining-suggestions"

type Config struct {
	MaxResults   int
	SampleSize   int
	ReceiveWait  time.Duration
	CallTimeout  time.Duration
	PollInterval time.Duration
	Concurrency  int
	MaxPerTick   int
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		MaxResults:   cfg.Search.MaxResults,
		SampleSize:   cfg.Fulfillment.SampleSize,
		ReceiveWait:  time.Duration(cfg.Queue.ReceiveWait) * time.Second,
		CallTimeout:  config.GetDuration(cfg.Fulfillment.CallTimeout),
		PollInterval: config.GetDuration(cfg.Fulfillment.PollInterval),
		Concurrency:  cfg.Fulfillment.Concurrency,
		MaxPerTick:   cfg.Fulfillment.MaxPerTick,
	}
}
