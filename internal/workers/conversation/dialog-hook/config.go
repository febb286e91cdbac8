// internal/workers/conversation/dialog-hook/config.go
package dialoghook

import (
	"time"

	"dining-concierge/internal/common/config"
)

const TaskType = "dialog-hook"

type Config struct {
	DiningIntent   string
	GreetingIntent string
	ThankYouIntent string
	Locations      []string
	LocationLabel  string
	Cuisines       []string
	MinPartySize   int
	MaxPartySize   int
	TimeZone       *time.Location
	EnqueueTimeout time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		DiningIntent:   cfg.Dialog.DiningIntent,
		GreetingIntent: cfg.Dialog.GreetingIntent,
		ThankYouIntent: cfg.Dialog.ThankYouIntent,
		Locations:      cfg.Dialog.Locations,
		LocationLabel:  cfg.Dialog.LocationLabel,
		Cuisines:       cfg.Dialog.Cuisines,
		MinPartySize:   cfg.Dialog.MinPartySize,
		MaxPartySize:   cfg.Dialog.MaxPartySize,
		TimeZone:       cfg.Dialog.Location(),
		EnqueueTimeout: config.GetDuration(cfg.Fulfillment.CallTimeout),
	}
}
