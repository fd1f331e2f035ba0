package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/domain/notification"
	"github.com/freshsupply/backend/internal/domain/partner"
	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/infrastructure/telemetry"
)

// DefaultRecipientDelay is the pause between recipient sends, bounding
// provider throughput.
const DefaultRecipientDelay = 500 * time.Millisecond

// SendOutcome is the per-order result of a notification batch
type SendOutcome struct {
	OrderID      uuid.UUID                      `json:"order_id"`
	OrderNumber  string                         `json:"order_number"`
	SentCount    int                            `json:"sent_count"`
	SuccessCount int                            `json:"success_count"`
	Success      bool                           `json:"success"`
	Recipients   []notification.RecipientResult `json:"recipients"`
	Error        string                         `json:"error,omitempty"` // Set when the order itself could not be processed
}

// Dispatcher sends purchase-order summaries to supplier contacts and
// records the outcome on each order. It never changes order status;
// callers apply the gate with ConfirmNotified after the batch, so
// resend flows can reuse both pieces.
type Dispatcher struct {
	orders          purchasing.PurchaseOrderRepository
	suppliers       partner.SupplierRepository
	provider        notification.Provider
	recipientDelay  time.Duration
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(orders purchasing.PurchaseOrderRepository, suppliers partner.SupplierRepository, provider notification.Provider, recipientDelay time.Duration, logger *zap.Logger) *Dispatcher {
	if recipientDelay <= 0 {
		recipientDelay = DefaultRecipientDelay
	}
	return &Dispatcher{
		orders:         orders,
		suppliers:      suppliers,
		provider:       provider,
		recipientDelay: recipientDelay,
		logger:         logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (d *Dispatcher) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	d.businessMetrics = bm
}

// SendBatch notifies the suppliers of the given purchase orders, one
// order at a time, one recipient at a time. A failure for one recipient
// or one order never aborts the rest of the batch; every outcome is
// recorded on the order and reported in the result list.
func (d *Dispatcher) SendBatch(ctx context.Context, orderIDs []uuid.UUID) ([]SendOutcome, error) {
	orders, err := d.orders.FindByIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	ordersByID := make(map[uuid.UUID]*purchasing.PurchaseOrder, len(orders))
	for _, o := range orders {
		ordersByID[o.ID] = o
	}

	outcomes := make([]SendOutcome, 0, len(orderIDs))
	for _, id := range orderIDs {
		order, ok := ordersByID[id]
		if !ok {
			outcomes = append(outcomes, SendOutcome{
				OrderID: id,
				Error:   "purchase order not found",
			})
			continue
		}
		outcomes = append(outcomes, d.sendOne(ctx, order))
	}
	return outcomes, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, order *purchasing.PurchaseOrder) SendOutcome {
	outcome := SendOutcome{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
	}

	supplier, err := d.suppliers.FindByID(ctx, order.SupplierID)
	if err != nil {
		outcome.Error = "supplier not found"
		return outcome
	}

	recipients := supplier.NotificationRecipients()
	if len(recipients) == 0 {
		outcome.Error = "supplier has no notification contacts"
		return outcome
	}

	message := RenderMessage(order)
	sentAt := time.Now()

sendLoop:
	for idx, recipient := range recipients {
		if idx > 0 {
			// sequential sends with a fixed delay between recipients
			select {
			case <-time.After(d.recipientDelay):
			case <-ctx.Done():
				// record the unsent remainder as failed pages and stop
				for _, remaining := range recipients[idx:] {
					outcome.SentCount++
					outcome.Recipients = append(outcome.Recipients, notification.RecipientResult{
						Recipient: remaining,
						Success:   false,
						Error:     ctx.Err().Error(),
					})
				}
				break sendLoop
			}
		}

		result, err := d.provider.Send(ctx, message, []string{recipient})
		if err != nil {
			// unreachable provider counts as one failed page
			d.logger.Warn("notification provider error",
				zap.String("order_number", order.OrderNumber),
				zap.String("recipient", recipient),
				zap.Error(err))
			outcome.SentCount++
			outcome.Recipients = append(outcome.Recipients, notification.RecipientResult{
				Recipient: recipient,
				Success:   false,
				Error:     err.Error(),
			})
			continue
		}

		outcome.SentCount += result.SentCount
		outcome.SuccessCount += result.SuccessCount
		outcome.Recipients = append(outcome.Recipients, result.Results...)
	}

	outcome.Success = outcome.SentCount > 0 && outcome.SuccessCount == outcome.SentCount

	// outcome is persisted regardless of success so failed sends stay
	// visible and retryable
	order.RecordSmsResult(outcome.Success, sentAt)
	if err := d.orders.Save(ctx, order); err != nil {
		d.logger.Error("failed to persist sms result",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err))
		outcome.Error = err.Error()
	}

	if d.businessMetrics != nil {
		d.businessMetrics.RecordNotificationPages(ctx, outcome.SuccessCount, outcome.SentCount-outcome.SuccessCount)
	}

	d.logger.Info("notification batch item processed",
		zap.String("order_number", order.OrderNumber),
		zap.Int("sent", outcome.SentCount),
		zap.Int("succeeded", outcome.SuccessCount),
		zap.Bool("success", outcome.Success))

	return outcome
}

// RenderMessage builds the supplier-facing summary text for an order
func RenderMessage(order *purchasing.PurchaseOrder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", order.OrderNumber, order.SupplierName)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%s %s %s\n", item.ProductName, item.Quantity.String(), item.Unit)
	}
	fmt.Fprintf(&b, "Total: %s", order.TotalAmount.StringFixed(0))
	return b.String()
}
