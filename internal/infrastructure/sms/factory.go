package sms

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/domain/notification"
	"github.com/freshsupply/backend/internal/infrastructure/config"
)

// NewProvider creates the SMS provider named by configuration
func NewProvider(cfg config.SmsConfig, logger *zap.Logger) (notification.Provider, error) {
	switch cfg.Provider {
	case "console":
		return NewConsoleProvider(logger), nil
	case "http":
		return NewHTTPProvider(cfg.GatewayURL, cfg.APIKey, cfg.Sender, cfg.RequestTimeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown sms provider: %s", cfg.Provider)
	}
}
