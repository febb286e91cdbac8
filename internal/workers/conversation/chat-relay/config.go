// internal/workers/conversation/chat-relay/config.go
package chatrelay

import (
	"time"

	"dining-concierge/internal/common/config"
)

const TaskType = "chat-relay"

type Config struct {
	BotID            string
	BotAliasID       string
	LocaleID         string
	DefaultSessionID string
	Timeout          time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		BotID:            cfg.Relay.BotID,
		BotAliasID:       cfg.Relay.BotAliasID,
		LocaleID:         cfg.Relay.LocaleID,
		DefaultSessionID: cfg.Relay.DefaultSessionID,
		Timeout:          config.GetDuration(cfg.Relay.Timeout),
	}
}
