package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/domain/purchasing"
)

// ConfirmNotified applies the notification gate: each purchase order
// whose outcome reports a fully successful send is promoted to
// CONFIRMED. The decision is per order, so one failed supplier never
// holds back the others; failed orders keep their status and stay
// retryable through a resend. Returns the number of orders promoted.
func ConfirmNotified(ctx context.Context, orders purchasing.PurchaseOrderRepository, outcomes []SendOutcome, logger *zap.Logger) int {
	confirmed := 0
	for _, outcome := range outcomes {
		if !outcome.Success {
			continue
		}
		order, err := orders.FindByID(ctx, outcome.OrderID)
		if err != nil {
			logger.Warn("failed to load notified purchase order",
				zap.String("order_number", outcome.OrderNumber),
				zap.Error(err))
			continue
		}
		if err := order.Confirm(); err != nil {
			logger.Warn("failed to confirm notified purchase order",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
			continue
		}
		if err := orders.Save(ctx, order); err != nil {
			logger.Warn("failed to save confirmed purchase order",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
			continue
		}
		confirmed++
	}
	return confirmed
}
