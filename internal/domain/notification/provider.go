package notification

import "context"

// RecipientResult records the outcome of a send to one recipient
type RecipientResult struct {
	Recipient string `json:"recipient"`
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"` // Provider-assigned id, if any
	Error     string `json:"error,omitempty"`
}

// SendResult is the aggregate outcome of one message sent to a set of
// recipients
type SendResult struct {
	SentCount    int               `json:"sent_count"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	Results      []RecipientResult `json:"results"`
}

// AllSucceeded is the notification gate predicate: at least one send
// was attempted and none failed
func (r SendResult) AllSucceeded() bool {
	return r.SentCount > 0 && r.SuccessCount == r.SentCount
}

// Provider is the outbound-message transport port. Implementations wrap
// a concrete SMS gateway; the pipeline never depends on a provider's
// wire protocol.
type Provider interface {
	// Name returns the provider identifier for logging
	Name() string

	// Send delivers one message to the given recipients. A per-recipient
	// transport failure is recorded in the result, not returned as an
	// error; an error return means the provider itself was unreachable.
	Send(ctx context.Context, message string, recipients []string) (SendResult, error)
}
