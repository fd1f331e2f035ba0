package cutoff

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/application/aggregation"
	appnotification "github.com/freshsupply/backend/internal/application/notification"
	apppurchasing "github.com/freshsupply/backend/internal/application/purchasing"
	"github.com/freshsupply/backend/internal/domain/cutoff"
	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
)

// closeLockKey serializes close attempts across processes
const closeLockKey = "cutoff:close"

// CloseResult summarizes a cutoff close: what was generated, what was
// notified, and how many purchase orders passed the notification gate.
type CloseResult struct {
	Generated       []*purchasing.PurchaseOrder    `json:"generated"`
	Skipped         []apppurchasing.SkippedSupplier `json:"skipped"`
	Notifications   []appnotification.SendOutcome  `json:"notifications"`
	ConfirmedOrders int                            `json:"confirmed_orders"`
	WindowClosed    bool                           `json:"window_closed"`
}

// WindowService manages the daily cutoff window and runs the close
// pipeline: aggregate, generate purchase orders, notify suppliers,
// confirm the purchase orders whose notification succeeded.
type WindowService struct {
	windows        cutoff.WindowRepository
	purchaseOrders purchasing.PurchaseOrderRepository
	engine         *aggregation.Engine
	generator      *apppurchasing.Generator
	dispatcher     *appnotification.Dispatcher
	locks          shared.OperationLockStore
	category       string
	logger         *zap.Logger
}

// NewWindowService creates a new cutoff window service
func NewWindowService(
	windows cutoff.WindowRepository,
	purchaseOrders purchasing.PurchaseOrderRepository,
	engine *aggregation.Engine,
	generator *apppurchasing.Generator,
	dispatcher *appnotification.Dispatcher,
	locks shared.OperationLockStore,
	category string,
	logger *zap.Logger,
) *WindowService {
	return &WindowService{
		windows:        windows,
		purchaseOrders: purchaseOrders,
		engine:         engine,
		generator:      generator,
		dispatcher:     dispatcher,
		locks:          locks,
		category:       category,
		logger:         logger,
	}
}

// Status returns the current window, creating an open one on first use
func (s *WindowService) Status(ctx context.Context) (*cutoff.Window, error) {
	window, err := s.windows.Get(ctx)
	if err != nil {
		if shared.IsNotFound(err) {
			window = cutoff.NewWindow()
			if err := s.windows.Save(ctx, window); err != nil {
				return nil, err
			}
			return window, nil
		}
		return nil, err
	}
	return window, nil
}

// Open opens the cutoff window for a new round of ordering
func (s *WindowService) Open(ctx context.Context) (*cutoff.Window, error) {
	window, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	window.Open()
	if err := s.windows.Save(ctx, window); err != nil {
		return nil, err
	}
	s.logger.Info("cutoff window opened")
	return window, nil
}

// CloseOnly closes the window without generating purchase orders.
// Orders placed after this carry the AFTER_CUTOFF marker.
func (s *WindowService) CloseOnly(ctx context.Context, actor string) (*cutoff.Window, error) {
	window, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	if err := window.Close(actor); err != nil {
		return nil, err
	}
	if err := s.windows.Save(ctx, window); err != nil {
		return nil, err
	}
	s.logger.Info("cutoff window closed without generation", zap.String("actor", actor))
	return window, nil
}

// Close runs the full close pipeline. Only one close runs at a time;
// a concurrent attempt gets OPERATION_IN_PROGRESS. The window is closed
// even when the aggregation is empty, so a quiet day still ends cleanly.
func (s *WindowService) Close(ctx context.Context, actor string) (*CloseResult, error) {
	acquired, err := s.locks.Acquire(ctx, closeLockKey, 30*time.Second)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, shared.ErrOperationInProgress
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), closeLockKey); err != nil {
			s.logger.Warn("failed to release close lock", zap.Error(err))
		}
	}()

	window, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	if window.IsClosed() {
		return nil, shared.NewDomainError("ALREADY_CLOSED", "Cutoff window is already closed")
	}

	since := time.Time{}
	if window.OpenedAt != nil {
		since = *window.OpenedAt
	}

	agg, err := s.engine.Aggregate(ctx, s.category, since)
	if err != nil {
		return nil, err
	}

	result := &CloseResult{}

	if category := agg.FindCategory(s.category); category != nil && len(category.Suppliers) > 0 {
		batch := s.generator.GenerateBatch(ctx, category.Suppliers, s.category, purchasing.PurchaseOrderStatusPlaced)
		result.Generated = batch.Generated
		result.Skipped = batch.Skipped

		if len(batch.Generated) > 0 {
			ids := make([]uuid.UUID, 0, len(batch.Generated))
			for _, po := range batch.Generated {
				ids = append(ids, po.ID)
			}
			outcomes, err := s.dispatcher.SendBatch(ctx, ids)
			if err != nil {
				return nil, err
			}
			result.Notifications = outcomes
			result.ConfirmedOrders = appnotification.ConfirmNotified(ctx, s.purchaseOrders, outcomes, s.logger)
		}
	} else {
		s.logger.Info("cutoff close with no orders to aggregate")
	}

	if err := window.Close(actor); err != nil {
		return nil, err
	}
	if err := s.windows.Save(ctx, window); err != nil {
		return nil, err
	}
	result.WindowClosed = true

	s.logger.Info("cutoff window closed",
		zap.String("actor", actor),
		zap.Int("generated", len(result.Generated)),
		zap.Int("confirmed_orders", result.ConfirmedOrders))
	return result, nil
}
