package purchasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshsupply/backend/internal/domain/ordering"
	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
)

// PurchaseOrderStatus represents the lifecycle status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPlaced    PurchaseOrderStatus = "PLACED"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusPended    PurchaseOrderStatus = "PENDED"
	PurchaseOrderStatusRejected  PurchaseOrderStatus = "REJECTED"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "COMPLETED"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPlaced, PurchaseOrderStatusConfirmed, PurchaseOrderStatusPended,
		PurchaseOrderStatusRejected, PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPlaced:
		return target == PurchaseOrderStatusConfirmed || target == PurchaseOrderStatusPended ||
			target == PurchaseOrderStatusRejected || target == PurchaseOrderStatusCancelled ||
			target == PurchaseOrderStatusCompleted
	case PurchaseOrderStatusPended:
		return target == PurchaseOrderStatusConfirmed || target == PurchaseOrderStatusRejected ||
			target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusConfirmed:
		return target == PurchaseOrderStatusCompleted || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusRejected, PurchaseOrderStatusCompleted, PurchaseOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// CanReceiveInbound returns true if inbound reconciliation is allowed
// in this status
func (s PurchaseOrderStatus) CanReceiveInbound() bool {
	return s == PurchaseOrderStatusPlaced || s == PurchaseOrderStatusConfirmed
}

// PurchaseOrderItem represents a per-product line derived from the
// supplier aggregation
type PurchaseOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Reference price at generation time
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	OrderCount  int             `gorm:"not null;default:0"` // Number of sale orders contributing to this line
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderItem) TableName() string {
	return "purchase_order_items"
}

// NewPurchaseOrderItem creates a purchase order line item
func NewPurchaseOrderItem(orderID, productID uuid.UUID, productName, productCode, unit string, quantity decimal.Decimal, unitPrice valueobject.Money, orderCount int) (*PurchaseOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		ProductCode: productCode,
		Quantity:    quantity,
		Unit:        unit,
		UnitPrice:   unitPrice.Amount(),
		LineTotal:   quantity.Mul(unitPrice.Amount()),
		OrderCount:  orderCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetLineTotalMoney returns the line total as Money value object
func (i *PurchaseOrderItem) GetLineTotalMoney() valueobject.Money {
	return valueobject.NewMoneyMMK(i.LineTotal)
}

// PurchaseOrder represents a per-supplier purchase request generated
// from one aggregation run. SmsSuccess is tri-state: nil means no send
// was ever attempted, true/false record the last batch outcome.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber        string                      `gorm:"type:varchar(50);not null;uniqueIndex"`
	SupplierID         uuid.UUID                   `gorm:"type:uuid;not null;index"`
	SupplierName       string                      `gorm:"type:varchar(200);not null"`
	Category           string                      `gorm:"type:varchar(50);not null;index"`
	Items              []PurchaseOrderItem         `gorm:"foreignKey:OrderID;references:ID"`
	TotalQuantity      decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount        decimal.Decimal             `gorm:"type:decimal(18,4);not null;default:0"`
	Status             PurchaseOrderStatus         `gorm:"type:varchar(20);not null;default:'PLACED';index"`
	ConfirmationStatus ordering.ConfirmationStatus `gorm:"type:varchar(20)"`
	SmsSuccess         *bool
	LastSmsSentAt      *time.Time
	LedgerID           *uuid.UUID `gorm:"type:uuid;index"` // Set when inbound reconciliation completes
	PlacedAt           time.Time  `gorm:"not null;index"`
	ConfirmedAt        *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	Remark             string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a purchase order in the requested initial status.
// PLACED is the default flow; CONFIRMED is used for pre-vetted flows that
// skip the notification gate.
func NewPurchaseOrder(orderNumber string, supplierID uuid.UUID, supplierName, category string, status PurchaseOrderStatus, confirmation ordering.ConfirmationStatus) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if status != PurchaseOrderStatusPlaced && status != PurchaseOrderStatusConfirmed {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Purchase orders start as PLACED or CONFIRMED, not %s", status))
	}

	now := time.Now()
	order := &PurchaseOrder{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		OrderNumber:        orderNumber,
		SupplierID:         supplierID,
		SupplierName:       supplierName,
		Category:           category,
		Items:              make([]PurchaseOrderItem, 0),
		TotalQuantity:      decimal.Zero,
		TotalAmount:        decimal.Zero,
		Status:             status,
		ConfirmationStatus: confirmation,
		PlacedAt:           now,
	}
	if status == PurchaseOrderStatusConfirmed {
		order.ConfirmedAt = &now
	}
	return order, nil
}

// AddItem adds a per-product line to the order.
// Only allowed before any SMS has been sent or inbound completed.
func (o *PurchaseOrder) AddItem(productID uuid.UUID, productName, productCode, unit string, quantity decimal.Decimal, unitPrice valueobject.Money, orderCount int) (*PurchaseOrderItem, error) {
	if o.Status == PurchaseOrderStatusCompleted || o.Status == PurchaseOrderStatusCancelled || o.Status == PurchaseOrderStatusRejected {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add items to order in %s status", o.Status))
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order")
		}
	}

	item, err := NewPurchaseOrderItem(o.ID, productID, productName, productCode, unit, quantity, unitPrice, orderCount)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return item, nil
}

// RecordSmsResult persists the outcome of a notification batch.
// It is written on every attempt, success or not, so failed sends stay
// visible and retryable.
func (o *PurchaseOrder) RecordSmsResult(success bool, sentAt time.Time) {
	o.SmsSuccess = &success
	o.LastSmsSentAt = &sentAt
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Confirm transitions the order to CONFIRMED. Called by the cutoff
// manager or resend flow after the notification gate passes; the
// dispatcher itself never changes order status.
func (o *PurchaseOrder) Confirm() error {
	if o.Status == PurchaseOrderStatusConfirmed {
		return nil
	}
	if !o.Status.CanTransitionTo(PurchaseOrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = PurchaseOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// CompleteWithLedger flips the order to COMPLETED and links the ledger
// created by inbound reconciliation
func (o *PurchaseOrder) CompleteWithLedger(ledgerID uuid.UUID) error {
	if !o.Status.CanReceiveInbound() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete inbound for order in %s status", o.Status))
	}
	if ledgerID == uuid.Nil {
		return shared.NewDomainError("INVALID_LEDGER", "Ledger ID cannot be empty")
	}
	now := time.Now()
	o.Status = PurchaseOrderStatusCompleted
	o.CompletedAt = &now
	o.LedgerID = &ledgerID
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Cancel cancels the order before inbound
func (o *PurchaseOrder) Cancel() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = PurchaseOrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// GetItemByProduct returns an item by product ID, or nil
func (o *PurchaseOrder) GetItemByProduct(productID uuid.UUID) *PurchaseOrderItem {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return &o.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of lines in the order
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// IsCompleted returns true if the order has been reconciled
func (o *PurchaseOrder) IsCompleted() bool {
	return o.Status == PurchaseOrderStatusCompleted
}

// SmsPending returns true if no notification was ever attempted
func (o *PurchaseOrder) SmsPending() bool {
	return o.SmsSuccess == nil
}

// GetTotalAmountMoney returns the order total as Money
func (o *PurchaseOrder) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMMK(o.TotalAmount)
}

func (o *PurchaseOrder) recalculateTotals() {
	quantity := decimal.Zero
	amount := decimal.Zero
	for _, item := range o.Items {
		quantity = quantity.Add(item.Quantity)
		amount = amount.Add(item.LineTotal)
	}
	o.TotalQuantity = quantity
	o.TotalAmount = amount
}
