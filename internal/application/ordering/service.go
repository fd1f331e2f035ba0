package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcutoff "github.com/freshsupply/backend/internal/application/cutoff"
	"github.com/freshsupply/backend/internal/domain/catalog"
	"github.com/freshsupply/backend/internal/domain/cutoff"
	"github.com/freshsupply/backend/internal/domain/numbering"
	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/infrastructure/telemetry"
)

// CreateSaleOrderItem is one requested line of a new sale order
type CreateSaleOrderItem struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required,gt=0"`
}

// CreateSaleOrderRequest is the input for creating a sale order
type CreateSaleOrderRequest struct {
	CustomerID   uuid.UUID             `json:"customer_id" binding:"required"`
	CustomerName string                `json:"customer_name" binding:"required"`
	Category     string                `json:"category" binding:"required"`
	Items        []CreateSaleOrderItem `json:"items" binding:"required,min=1,dive"`
}

// SaleOrderService handles sale order lifecycle operations
type SaleOrderService struct {
	orders          ordering.SaleOrderRepository
	products        catalog.ProductRepository
	windows         cutoff.WindowRepository
	cycles          *appcutoff.CycleService
	sequence        numbering.Generator
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewSaleOrderService creates a new sale order service
func NewSaleOrderService(
	orders ordering.SaleOrderRepository,
	products catalog.ProductRepository,
	windows cutoff.WindowRepository,
	cycles *appcutoff.CycleService,
	sequence numbering.Generator,
	logger *zap.Logger,
) *SaleOrderService {
	return &SaleOrderService{
		orders:   orders,
		products: products,
		windows:  windows,
		cycles:   cycles,
		sequence: sequence,
		logger:   logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SaleOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Create places a new sale order. Its initial status and confirmation
// class follow the current cycle: a confirmed cycle yields a
// pre-confirmed additional order. The cutoff marker records whether the
// window was still open at placement.
func (s *SaleOrderService) Create(ctx context.Context, req *CreateSaleOrderRequest) (*ordering.SaleOrder, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Sale order must have at least one item")
	}

	creation, err := s.cycles.OrderCreationData(ctx)
	if err != nil {
		return nil, err
	}

	cutoffStatus := ordering.CutoffStatusWithin
	window, err := s.windows.Get(ctx)
	if err != nil {
		if !shared.IsNotFound(err) {
			return nil, err
		}
		// no window yet means nothing has been closed
	} else if window.IsClosed() {
		cutoffStatus = ordering.CutoffStatusAfter
	}

	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[uuid.UUID]*catalog.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	orderNumber, err := s.sequence.Next(ctx, numbering.PrefixSaleOrder)
	if err != nil {
		return nil, err
	}

	// Orders are always built PLACED so items can be attached; a confirmed
	// cycle then promotes the finished order before it is persisted.
	order, err := ordering.NewSaleOrder(orderNumber, req.CustomerID, req.CustomerName, req.Category, ordering.SaleOrderStatusPlaced, creation.Confirmation, cutoffStatus)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		product, ok := productsByID[item.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found: "+item.ProductID.String())
		}
		if _, err := order.AddItem(product.ID, product.Name, product.Code, product.Unit, item.Quantity, product.GetSalePriceMoney()); err != nil {
			return nil, err
		}
	}

	if creation.Status == ordering.SaleOrderStatusConfirmed {
		if err := order.Confirm(); err != nil {
			return nil, err
		}
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	if s.businessMetrics != nil {
		s.businessMetrics.RecordSaleOrderCreated(ctx, order.Category)
	}
	s.logger.Info("sale order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status.String()),
		zap.String("confirmation", order.ConfirmationStatus.String()),
		zap.String("cutoff", order.CutoffStatus.String()),
		zap.Int("items", len(order.Items)))
	return order, nil
}

// Get returns a sale order by id
func (s *SaleOrderService) Get(ctx context.Context, id uuid.UUID) (*ordering.SaleOrder, error) {
	return s.orders.FindByID(ctx, id)
}

// GetByNumber returns a sale order by its order number
func (s *SaleOrderService) GetByNumber(ctx context.Context, orderNumber string) (*ordering.SaleOrder, error) {
	return s.orders.FindByOrderNumber(ctx, orderNumber)
}

// List returns a page of sale orders
func (s *SaleOrderService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[*ordering.SaleOrder], error) {
	return s.orders.List(ctx, filter)
}

// Pend moves a sale order to PENDED
func (s *SaleOrderService) Pend(ctx context.Context, id uuid.UUID) (*ordering.SaleOrder, error) {
	return s.transition(ctx, id, func(o *ordering.SaleOrder) error { return o.Pend() })
}

// Reject rejects a sale order with a reason
func (s *SaleOrderService) Reject(ctx context.Context, id uuid.UUID, reason string) (*ordering.SaleOrder, error) {
	return s.transition(ctx, id, func(o *ordering.SaleOrder) error { return o.Reject(reason) })
}

// Complete marks a sale order delivered
func (s *SaleOrderService) Complete(ctx context.Context, id uuid.UUID) (*ordering.SaleOrder, error) {
	return s.transition(ctx, id, func(o *ordering.SaleOrder) error { return o.Complete() })
}

// Cancel cancels a sale order
func (s *SaleOrderService) Cancel(ctx context.Context, id uuid.UUID) (*ordering.SaleOrder, error) {
	return s.transition(ctx, id, func(o *ordering.SaleOrder) error { return o.Cancel() })
}

// Delete removes a sale order. Only pended orders may be deleted.
func (s *SaleOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.CanDelete() {
		return shared.NewDomainError("INVALID_STATE", "Only pended orders can be deleted")
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("sale order deleted",
		zap.String("order_number", order.OrderNumber),
		zap.Time("deleted_at", time.Now()))
	return nil
}

func (s *SaleOrderService) transition(ctx context.Context, id uuid.UUID, fn func(*ordering.SaleOrder) error) (*ordering.SaleOrder, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
