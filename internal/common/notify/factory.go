package notify

import (
	"fmt"

	"dining-concierge/internal/common/config"
)

// New builds the notifier named by cfg.Provider.
func New(cfg config.NotifyConfig, sesAPI SESAPI, snsAPI SNSAPI) (Notifier, error) {
	switch cfg.Provider {
	case config.NotifyProviderSES:
		if sesAPI == nil {
			return nil, fmt.Errorf("notify provider %q needs an SES client", cfg.Provider)
		}
		return NewSESNotifier(sesAPI, cfg.FromEmail), nil
	case config.NotifyProviderSNS:
		if snsAPI == nil {
			return nil, fmt.Errorf("notify provider %q needs an SNS client", cfg.Provider)
		}
		return NewSNSNotifier(snsAPI, cfg.TopicARN), nil
	default:
		return nil, fmt.Errorf("unknown notify provider %q", cfg.Provider)
	}
}
