package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/application/aggregation"
	"github.com/freshsupply/backend/internal/domain/cutoff"
	"github.com/freshsupply/backend/internal/domain/numbering"
	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/partner"
	"github.com/freshsupply/backend/internal/domain/purchasing"
	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
	"github.com/freshsupply/backend/internal/infrastructure/telemetry"
)

// DuplicateWindow is the half-width of the duplicate-detection window
// around the cycle's lastConfirmedAt. It is a heuristic time match, not
// a strict idempotency key.
const DuplicateWindow = 60 * time.Second

// SkippedSupplier records why one supplier was skipped in a batch run
type SkippedSupplier struct {
	SupplierID   uuid.UUID `json:"supplier_id"`
	SupplierName string    `json:"supplier_name"`
	Reason       string    `json:"reason"`
}

// GenerateBatchResult is the per-item outcome list of one batch run.
// A failure for one supplier never aborts the remaining suppliers.
type GenerateBatchResult struct {
	Generated []*purchasing.PurchaseOrder `json:"generated"`
	Skipped   []SkippedSupplier           `json:"skipped"`
}

// Generator converts per-supplier aggregations into purchase orders,
// guarded by the duplicate-detection window.
type Generator struct {
	orders          purchasing.PurchaseOrderRepository
	suppliers       partner.SupplierRepository
	cycles          cutoff.CycleRepository
	sequence        numbering.Generator
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewGenerator creates a new purchase order generator
func NewGenerator(orders purchasing.PurchaseOrderRepository, suppliers partner.SupplierRepository, cycles cutoff.CycleRepository, sequence numbering.Generator, logger *zap.Logger) *Generator {
	return &Generator{
		orders:    orders,
		suppliers: suppliers,
		cycles:    cycles,
		sequence:  sequence,
		logger:    logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (g *Generator) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	g.businessMetrics = bm
}

// Generate converts one supplier aggregation into a purchase order.
// If the cycle's lastConfirmedAt is set and an order for the same
// supplier and category was placed within ±60s of it, generation fails
// with DuplicatePurchaseOrderError carrying the existing order.
func (g *Generator) Generate(ctx context.Context, agg *aggregation.SupplierAggregation, category string, status purchasing.PurchaseOrderStatus) (*purchasing.PurchaseOrder, error) {
	if agg == nil || len(agg.Products) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Supplier aggregation has no products")
	}

	cycle, err := g.cycles.Get(ctx)
	if err != nil && !shared.IsNotFound(err) {
		return nil, err
	}

	if cycle != nil && cycle.LastConfirmedAt != nil {
		from := cycle.LastConfirmedAt.Add(-DuplicateWindow)
		to := cycle.LastConfirmedAt.Add(DuplicateWindow)
		existing, err := g.orders.FindBySupplierCategoryPlacedBetween(ctx, agg.SupplierID, category, from, to)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			return nil, &purchasing.DuplicatePurchaseOrderError{
				ExistingOrderID:     existing[0].ID,
				ExistingOrderNumber: existing[0].OrderNumber,
				SupplierName:        agg.SupplierName,
			}
		}
	}

	supplier, err := g.suppliers.FindByID(ctx, agg.SupplierID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier profile not found for aggregation")
		}
		return nil, err
	}

	orderNumber, err := g.sequence.Next(ctx, numbering.PrefixPurchaseOrder)
	if err != nil {
		return nil, err
	}

	confirmation := ordering.ConfirmationStatusRegular
	if cycle != nil && cycle.IsConfirmed {
		confirmation = ordering.ConfirmationStatusAdditional
	}

	order, err := purchasing.NewPurchaseOrder(orderNumber, supplier.ID, supplier.Name, category, status, confirmation)
	if err != nil {
		return nil, err
	}

	for _, product := range agg.Products {
		quantity := product.TotalQuantity()
		if !quantity.IsPositive() {
			continue
		}
		_, err := order.AddItem(product.ProductID, product.ProductName, product.ProductCode,
			product.Unit, quantity, valueobject.NewMoneyMMK(product.UnitPrice), product.OrderCount)
		if err != nil {
			return nil, err
		}
	}
	if order.ItemCount() == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Supplier aggregation has no positive quantities")
	}

	if err := g.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	g.logger.Info("purchase order generated",
		zap.String("order_number", order.OrderNumber),
		zap.String("supplier", order.SupplierName),
		zap.String("category", category),
		zap.Int("items", order.ItemCount()),
		zap.String("total_amount", order.TotalAmount.String()))

	if g.businessMetrics != nil {
		g.businessMetrics.RecordPurchaseOrderGenerated(ctx, category, order.TotalAmount)
	}

	return order, nil
}

// GenerateBatch iterates suppliers independently and returns per-item
// outcomes. Suppliers whose generation fails are skipped with a reason;
// the rest of the batch continues.
func (g *Generator) GenerateBatch(ctx context.Context, aggs []*aggregation.SupplierAggregation, category string, status purchasing.PurchaseOrderStatus) *GenerateBatchResult {
	result := &GenerateBatchResult{
		Generated: make([]*purchasing.PurchaseOrder, 0, len(aggs)),
		Skipped:   make([]SkippedSupplier, 0),
	}

	for _, agg := range aggs {
		order, err := g.Generate(ctx, agg, category, status)
		if err != nil {
			g.logger.Warn("skipping supplier in batch generation",
				zap.String("supplier", agg.SupplierName),
				zap.Error(err))
			result.Skipped = append(result.Skipped, SkippedSupplier{
				SupplierID:   agg.SupplierID,
				SupplierName: agg.SupplierName,
				Reason:       err.Error(),
			})
			continue
		}
		result.Generated = append(result.Generated, order)
	}

	return result
}
