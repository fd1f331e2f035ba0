package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/domain/notification"
)

// HTTPProvider sends messages through a JSON-over-HTTP SMS gateway
type HTTPProvider struct {
	gatewayURL string
	apiKey     string
	sender     string
	client     *http.Client
	logger     *zap.Logger
}

var _ notification.Provider = (*HTTPProvider)(nil)

// NewHTTPProvider creates a gateway-backed SMS provider
func NewHTTPProvider(gatewayURL, apiKey, sender string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPProvider{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		sender:     sender,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Name returns the provider identifier for logging
func (p *HTTPProvider) Name() string {
	return "http-gateway"
}

type gatewayRequest struct {
	Sender     string   `json:"sender,omitempty"`
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

type gatewayResponse struct {
	Results []struct {
		Recipient string `json:"recipient"`
		Status    string `json:"status"`
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// Send delivers one message through the gateway. A non-2xx response or
// transport failure is returned as an error; per-recipient delivery
// outcomes come back in the result.
func (p *HTTPProvider) Send(ctx context.Context, message string, recipients []string) (notification.SendResult, error) {
	body, err := json.Marshal(gatewayRequest{
		Sender:     p.sender,
		Recipients: recipients,
		Message:    message,
	})
	if err != nil {
		return notification.SendResult{}, fmt.Errorf("failed to encode sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return notification.SendResult{}, fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return notification.SendResult{}, fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return notification.SendResult{}, fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode, payload)
	}

	var gw gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&gw); err != nil {
		return notification.SendResult{}, fmt.Errorf("failed to decode sms gateway response: %w", err)
	}

	result := notification.SendResult{}
	for _, r := range gw.Results {
		success := r.Status == "sent" || r.Status == "delivered"
		result.SentCount++
		if success {
			result.SuccessCount++
		} else {
			result.FailureCount++
		}
		result.Results = append(result.Results, notification.RecipientResult{
			Recipient: r.Recipient,
			Success:   success,
			MessageID: r.MessageID,
			Error:     r.Error,
		})
	}

	// A gateway that omits per-recipient results still accepted the
	// request; treat every recipient as sent.
	if len(gw.Results) == 0 {
		for _, recipient := range recipients {
			result.SentCount++
			result.SuccessCount++
			result.Results = append(result.Results, notification.RecipientResult{
				Recipient: recipient,
				Success:   true,
			})
		}
	}

	p.logger.Debug("SMS gateway send completed",
		zap.Int("sent", result.SentCount),
		zap.Int("succeeded", result.SuccessCount))

	return result, nil
}
