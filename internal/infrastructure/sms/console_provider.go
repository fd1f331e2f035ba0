package sms

import (
	"context"

	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/domain/notification"
)

// ConsoleProvider logs messages instead of sending them. Used in
// development; config validation rejects it in production.
type ConsoleProvider struct {
	logger *zap.Logger
}

var _ notification.Provider = (*ConsoleProvider)(nil)

// NewConsoleProvider creates a log-only SMS provider
func NewConsoleProvider(logger *zap.Logger) *ConsoleProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleProvider{logger: logger}
}

// Name returns the provider identifier for logging
func (p *ConsoleProvider) Name() string {
	return "console"
}

// Send logs the message and reports every recipient as delivered
func (p *ConsoleProvider) Send(ctx context.Context, message string, recipients []string) (notification.SendResult, error) {
	p.logger.Info("SMS (console provider)",
		zap.Strings("recipients", recipients),
		zap.String("message", message))

	result := notification.SendResult{
		SentCount:    len(recipients),
		SuccessCount: len(recipients),
	}
	for _, recipient := range recipients {
		result.Results = append(result.Results, notification.RecipientResult{
			Recipient: recipient,
			Success:   true,
		})
	}
	return result, nil
}
