package aggregation

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/domain/catalog"
	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/partner"
)

// ProductAggregation is the per-product rollup of order line items
type ProductAggregation struct {
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	ProductCode       string          `json:"product_code"`
	Unit              string          `json:"unit"`
	UnitPrice         decimal.Decimal `json:"unit_price"` // Reference price from the first contributing line
	PlacedQuantity    decimal.Decimal `json:"placed_quantity"`
	PlacedAmount      decimal.Decimal `json:"placed_amount"`
	ConfirmedQuantity decimal.Decimal `json:"confirmed_quantity"`
	ConfirmedAmount   decimal.Decimal `json:"confirmed_amount"`
	OrderCount        int             `json:"order_count"`
}

// TotalQuantity returns placed plus confirmed quantity
func (p *ProductAggregation) TotalQuantity() decimal.Decimal {
	return p.PlacedQuantity.Add(p.ConfirmedQuantity)
}

// TotalAmount returns placed plus confirmed amount
func (p *ProductAggregation) TotalAmount() decimal.Decimal {
	return p.PlacedAmount.Add(p.ConfirmedAmount)
}

// SupplierAggregation is the per-supplier rollup with nested products
type SupplierAggregation struct {
	SupplierID        uuid.UUID             `json:"supplier_id"`
	SupplierName      string                `json:"supplier_name"`
	Recipients        []string              `json:"recipients"` // Resolved notification phones
	Products          []*ProductAggregation `json:"products"`
	PlacedQuantity    decimal.Decimal       `json:"placed_quantity"`
	PlacedAmount      decimal.Decimal       `json:"placed_amount"`
	ConfirmedQuantity decimal.Decimal       `json:"confirmed_quantity"`
	ConfirmedAmount   decimal.Decimal       `json:"confirmed_amount"`
}

// TotalQuantity returns placed plus confirmed quantity across products
func (s *SupplierAggregation) TotalQuantity() decimal.Decimal {
	return s.PlacedQuantity.Add(s.ConfirmedQuantity)
}

// TotalAmount returns placed plus confirmed amount across products
func (s *SupplierAggregation) TotalAmount() decimal.Decimal {
	return s.PlacedAmount.Add(s.ConfirmedAmount)
}

// CategoryAggregation groups supplier rollups under one category,
// suppliers sorted by descending total amount (stable on ties)
type CategoryAggregation struct {
	Category  string                 `json:"category"`
	Suppliers []*SupplierAggregation `json:"suppliers"`
}

// Result is the outcome of one aggregation run. It is derived data,
// recomputed each run, never persisted as source of truth.
type Result struct {
	Since      time.Time              `json:"since"`
	Categories []*CategoryAggregation `json:"categories"`
	OrderCount int                    `json:"order_count"`
}

// FindCategory returns the rollup for a category, or nil
func (r *Result) FindCategory(category string) *CategoryAggregation {
	for _, c := range r.Categories {
		if c.Category == category {
			return c
		}
	}
	return nil
}

// Engine rolls eligible sale orders up into category → supplier →
// product sums. It resolves products and suppliers once per run, then
// walks every order line exactly once, so no line is counted twice.
type Engine struct {
	orders    ordering.SaleOrderRepository
	products  catalog.ProductRepository
	suppliers partner.SupplierRepository
	logger    *zap.Logger
}

// NewEngine creates a new aggregation engine
func NewEngine(orders ordering.SaleOrderRepository, products catalog.ProductRepository, suppliers partner.SupplierRepository, logger *zap.Logger) *Engine {
	return &Engine{
		orders:    orders,
		products:  products,
		suppliers: suppliers,
		logger:    logger,
	}
}

// Aggregate rolls up active orders of the category placed at or after
// since. Rejected and cancelled orders are excluded by the repository
// query; a line referencing an unresolvable product is logged and
// skipped, never fails the run.
func (e *Engine) Aggregate(ctx context.Context, category string, since time.Time) (*Result, error) {
	orders, err := e.orders.FindActiveSince(ctx, category, since)
	if err != nil {
		return nil, err
	}
	return e.aggregateOrders(ctx, orders, since)
}

// AggregateForSupplier returns the rollup for a single supplier, used
// by the manual resend flow. Returns nil if the supplier has no demand.
func (e *Engine) AggregateForSupplier(ctx context.Context, category string, since time.Time, supplierID uuid.UUID) (*SupplierAggregation, error) {
	result, err := e.Aggregate(ctx, category, since)
	if err != nil {
		return nil, err
	}
	for _, cat := range result.Categories {
		for _, sup := range cat.Suppliers {
			if sup.SupplierID == supplierID {
				return sup, nil
			}
		}
	}
	return nil, nil
}

type supplierKey struct {
	category   string
	supplierID uuid.UUID
}

func (e *Engine) aggregateOrders(ctx context.Context, orders []*ordering.SaleOrder, since time.Time) (*Result, error) {
	if len(orders) == 0 {
		return &Result{Since: since, Categories: make([]*CategoryAggregation, 0)}, nil
	}

	// Pass 1: collect distinct product IDs across all order lines
	productIDSet := make(map[uuid.UUID]struct{})
	for _, order := range orders {
		for _, item := range order.Items {
			productIDSet[item.ProductID] = struct{}{}
		}
	}
	productIDs := make([]uuid.UUID, 0, len(productIDSet))
	for id := range productIDSet {
		productIDs = append(productIDs, id)
	}

	products, err := e.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[uuid.UUID]*catalog.Product, len(products))
	supplierIDSet := make(map[uuid.UUID]struct{})
	for _, p := range products {
		productsByID[p.ID] = p
		supplierIDSet[p.SupplierID] = struct{}{}
	}

	supplierIDs := make([]uuid.UUID, 0, len(supplierIDSet))
	for id := range supplierIDSet {
		supplierIDs = append(supplierIDs, id)
	}
	suppliers, err := e.suppliers.FindByIDs(ctx, supplierIDs)
	if err != nil {
		return nil, err
	}
	suppliersByID := make(map[uuid.UUID]*partner.Supplier, len(suppliers))
	for _, s := range suppliers {
		suppliersByID[s.ID] = s
	}

	// Pass 2: walk every line once and bucket category → supplier → product
	supplierAggs := make(map[supplierKey]*SupplierAggregation)
	supplierOrder := make([]supplierKey, 0)   // encounter order, the sort tie-break
	categoryOrder := make([]string, 0)        // encounter order of categories
	categorySeen := make(map[string]struct{}) // membership for categoryOrder
	productSeenInOrder := make(map[uuid.UUID]map[uuid.UUID]struct{})

	for _, order := range orders {
		confirmed := order.Status == ordering.SaleOrderStatusConfirmed
		for _, item := range order.Items {
			product, ok := productsByID[item.ProductID]
			if !ok {
				e.logger.Warn("skipping line with unresolvable product",
					zap.String("order_number", order.OrderNumber),
					zap.String("product_id", item.ProductID.String()))
				continue
			}
			supplier, ok := suppliersByID[product.SupplierID]
			if !ok {
				e.logger.Warn("skipping line with unresolvable supplier",
					zap.String("order_number", order.OrderNumber),
					zap.String("supplier_id", product.SupplierID.String()))
				continue
			}

			key := supplierKey{category: product.Category, supplierID: supplier.ID}
			agg, ok := supplierAggs[key]
			if !ok {
				agg = &SupplierAggregation{
					SupplierID:        supplier.ID,
					SupplierName:      supplier.Name,
					Recipients:        supplier.NotificationRecipients(),
					Products:          make([]*ProductAggregation, 0),
					PlacedQuantity:    decimal.Zero,
					PlacedAmount:      decimal.Zero,
					ConfirmedQuantity: decimal.Zero,
					ConfirmedAmount:   decimal.Zero,
				}
				supplierAggs[key] = agg
				supplierOrder = append(supplierOrder, key)
				if _, seen := categorySeen[product.Category]; !seen {
					categorySeen[product.Category] = struct{}{}
					categoryOrder = append(categoryOrder, product.Category)
				}
			}

			var prodAgg *ProductAggregation
			for _, pa := range agg.Products {
				if pa.ProductID == item.ProductID {
					prodAgg = pa
					break
				}
			}
			if prodAgg == nil {
				prodAgg = &ProductAggregation{
					ProductID:         item.ProductID,
					ProductName:       item.ProductName,
					ProductCode:       item.ProductCode,
					Unit:              item.Unit,
					UnitPrice:         item.UnitPrice,
					PlacedQuantity:    decimal.Zero,
					PlacedAmount:      decimal.Zero,
					ConfirmedQuantity: decimal.Zero,
					ConfirmedAmount:   decimal.Zero,
				}
				agg.Products = append(agg.Products, prodAgg)
			}

			if confirmed {
				prodAgg.ConfirmedQuantity = prodAgg.ConfirmedQuantity.Add(item.Quantity)
				prodAgg.ConfirmedAmount = prodAgg.ConfirmedAmount.Add(item.LineTotal)
				agg.ConfirmedQuantity = agg.ConfirmedQuantity.Add(item.Quantity)
				agg.ConfirmedAmount = agg.ConfirmedAmount.Add(item.LineTotal)
			} else {
				prodAgg.PlacedQuantity = prodAgg.PlacedQuantity.Add(item.Quantity)
				prodAgg.PlacedAmount = prodAgg.PlacedAmount.Add(item.LineTotal)
				agg.PlacedQuantity = agg.PlacedQuantity.Add(item.Quantity)
				agg.PlacedAmount = agg.PlacedAmount.Add(item.LineTotal)
			}

			// order count: one per contributing sale order per product
			if _, ok := productSeenInOrder[order.ID]; !ok {
				productSeenInOrder[order.ID] = make(map[uuid.UUID]struct{})
			}
			if _, counted := productSeenInOrder[order.ID][item.ProductID]; !counted {
				productSeenInOrder[order.ID][item.ProductID] = struct{}{}
				prodAgg.OrderCount++
			}
		}
	}

	// Assemble categories in encounter order, suppliers sorted by
	// descending total amount with stable encounter-order tie-break
	result := &Result{
		Since:      since,
		Categories: make([]*CategoryAggregation, 0, len(categoryOrder)),
		OrderCount: len(orders),
	}
	for _, category := range categoryOrder {
		cat := &CategoryAggregation{
			Category:  category,
			Suppliers: make([]*SupplierAggregation, 0),
		}
		for _, key := range supplierOrder {
			if key.category == category {
				cat.Suppliers = append(cat.Suppliers, supplierAggs[key])
			}
		}
		sort.SliceStable(cat.Suppliers, func(i, j int) bool {
			return cat.Suppliers[i].TotalAmount().GreaterThan(cat.Suppliers[j].TotalAmount())
		})
		result.Categories = append(result.Categories, cat)
	}

	return result, nil
}
