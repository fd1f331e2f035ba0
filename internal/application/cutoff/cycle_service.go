package cutoff

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/application/aggregation"
	apppurchasing "github.com/freshsupply/backend/internal/application/purchasing"
	"github.com/freshsupply/backend/internal/domain/cutoff"
	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
)

// confirmLockKey serializes cycle confirmations across processes
const confirmLockKey = "cycle:confirm"

// CycleStatus is the read model for the daily order cycle
type CycleStatus struct {
	IsConfirmed          bool       `json:"is_confirmed"`
	ResetAt              time.Time  `json:"reset_at"`
	LastConfirmedAt      *time.Time `json:"last_confirmed_at,omitempty"`
	AutoResetScheduledAt *time.Time `json:"auto_reset_scheduled_at,omitempty"`
	ConfirmedBy          string     `json:"confirmed_by,omitempty"`
}

// ConfirmResult summarizes a cycle confirmation
type ConfirmResult struct {
	ConfirmedOrders int                             `json:"confirmed_orders"`
	FailedOrders    int                             `json:"failed_orders"`
	Generated       []*purchasing.PurchaseOrder     `json:"generated"`
	Skipped         []apppurchasing.SkippedSupplier `json:"skipped"`
	Cycle           *CycleStatus                    `json:"cycle"`
}

// OrderCreationData tells the sale-order service how to stamp a new
// order relative to the current cycle.
type OrderCreationData struct {
	Status       ordering.SaleOrderStatus
	Confirmation ordering.ConfirmationStatus
}

// CycleService manages the daily order cycle: confirmation of the day's
// orders, manual resets, and the delayed automatic reset.
type CycleService struct {
	cycles     cutoff.CycleRepository
	saleOrders ordering.SaleOrderRepository
	engine     *aggregation.Engine
	generator  *apppurchasing.Generator
	locks      shared.OperationLockStore
	category   string
	logger     *zap.Logger
}

// NewCycleService creates a new cycle service
func NewCycleService(
	cycles cutoff.CycleRepository,
	saleOrders ordering.SaleOrderRepository,
	engine *aggregation.Engine,
	generator *apppurchasing.Generator,
	locks shared.OperationLockStore,
	category string,
	logger *zap.Logger,
) *CycleService {
	return &CycleService{
		cycles:     cycles,
		saleOrders: saleOrders,
		engine:     engine,
		generator:  generator,
		locks:      locks,
		category:   category,
		logger:     logger,
	}
}

// GetStatus returns the current cycle state. Before the first
// confirmation no cycle row exists; the zero state covers today.
func (s *CycleService) GetStatus(ctx context.Context) (*CycleStatus, error) {
	cycle, err := s.cycles.Get(ctx)
	if err != nil {
		if shared.IsNotFound(err) {
			return &CycleStatus{
				IsConfirmed: false,
				ResetAt:     cutoff.StartOfToday(),
			}, nil
		}
		return nil, err
	}
	return statusOf(cycle), nil
}

func statusOf(cycle *cutoff.Cycle) *CycleStatus {
	return &CycleStatus{
		IsConfirmed:          cycle.IsConfirmed,
		ResetAt:              cycle.ResetAt,
		LastConfirmedAt:      cycle.LastConfirmedAt,
		AutoResetScheduledAt: cycle.AutoResetScheduledAt,
		ConfirmedBy:          cycle.ConfirmedBy,
	}
}

// OrderCreationData returns the status stamps for a sale order created
// right now: confirmed cycles yield pre-confirmed additional orders.
func (s *CycleService) OrderCreationData(ctx context.Context) (*OrderCreationData, error) {
	status, err := s.GetStatus(ctx)
	if err != nil {
		return nil, err
	}
	if status.IsConfirmed {
		return &OrderCreationData{
			Status:       ordering.SaleOrderStatusConfirmed,
			Confirmation: ordering.ConfirmationStatusAdditional,
		}, nil
	}
	return &OrderCreationData{
		Status:       ordering.SaleOrderStatusPlaced,
		Confirmation: ordering.ConfirmationStatusRegular,
	}, nil
}

// Confirm marks the current cycle confirmed: every regular placed order
// since the last reset is promoted, and purchase orders are generated
// for the suppliers with outstanding quantity. Order promotion is best
// effort; a single bad order never blocks the confirmation.
func (s *CycleService) Confirm(ctx context.Context, actor string) (*ConfirmResult, error) {
	acquired, err := s.locks.Acquire(ctx, confirmLockKey, 30*time.Second)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, shared.ErrOperationInProgress
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), confirmLockKey); err != nil {
			s.logger.Warn("failed to release confirm lock", zap.Error(err))
		}
	}()

	cycle, err := s.cycles.Get(ctx)
	if err != nil {
		if !shared.IsNotFound(err) {
			return nil, err
		}
		cycle = cutoff.NewCycle()
	}

	since := cycle.ResetAt
	if since.IsZero() {
		since = cutoff.StartOfToday()
	}
	now := time.Now()

	result := &ConfirmResult{}

	orders, err := s.saleOrders.FindPlacedBetween(ctx, since, now)
	if err != nil {
		return nil, err
	}
	for _, order := range orders {
		if order.IsAdditional() {
			continue
		}
		if err := order.Confirm(); err != nil {
			result.FailedOrders++
			s.logger.Warn("failed to confirm sale order during cycle confirm",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
			continue
		}
		if err := s.saleOrders.Save(ctx, order); err != nil {
			result.FailedOrders++
			s.logger.Warn("failed to save sale order during cycle confirm",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err))
			continue
		}
		result.ConfirmedOrders++
	}

	// generation failures are logged but never block the confirmation
	if agg, err := s.engine.Aggregate(ctx, s.category, since); err != nil {
		s.logger.Error("aggregation failed during cycle confirm", zap.Error(err))
	} else if category := agg.FindCategory(s.category); category != nil {
		withQuantity := make([]*aggregation.SupplierAggregation, 0, len(category.Suppliers))
		for _, supplier := range category.Suppliers {
			if supplier.TotalQuantity().IsPositive() {
				withQuantity = append(withQuantity, supplier)
			}
		}
		if len(withQuantity) > 0 {
			batch := s.generator.GenerateBatch(ctx, withQuantity, s.category, purchasing.PurchaseOrderStatusConfirmed)
			result.Generated = batch.Generated
			result.Skipped = batch.Skipped
		}
	}

	cycle.Confirm(actor)
	if err := s.cycles.Save(ctx, cycle); err != nil {
		return nil, err
	}
	result.Cycle = statusOf(cycle)

	s.logger.Info("order cycle confirmed",
		zap.String("actor", actor),
		zap.Int("confirmed_orders", result.ConfirmedOrders),
		zap.Int("failed_orders", result.FailedOrders),
		zap.Int("generated", len(result.Generated)))
	return result, nil
}

// Reset starts a new cycle immediately
func (s *CycleService) Reset(ctx context.Context) (*CycleStatus, error) {
	cycle, err := s.cycles.Get(ctx)
	if err != nil {
		if !shared.IsNotFound(err) {
			return nil, err
		}
		cycle = cutoff.NewCycle()
	}
	cycle.Reset()
	if err := s.cycles.Save(ctx, cycle); err != nil {
		return nil, err
	}
	s.logger.Info("order cycle reset")
	return statusOf(cycle), nil
}

// RunAutoReset resets the cycle when its scheduled auto-reset has come
// due. Called periodically from the server's ticker loop.
func (s *CycleService) RunAutoReset(ctx context.Context) error {
	cycle, err := s.cycles.Get(ctx)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil
		}
		return err
	}
	if !cycle.AutoResetDue(time.Now()) {
		return nil
	}
	scheduledAt := cycle.AutoResetScheduledAt
	cycle.Reset()
	if err := s.cycles.Save(ctx, cycle); err != nil {
		return err
	}
	s.logger.Info("order cycle auto reset", zap.Timep("was_scheduled_at", scheduledAt))
	return nil
}
