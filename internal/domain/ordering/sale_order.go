package ordering

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
)

// SaleOrderStatus represents the lifecycle status of a sale order
type SaleOrderStatus string

const (
	SaleOrderStatusPlaced    SaleOrderStatus = "PLACED"
	SaleOrderStatusConfirmed SaleOrderStatus = "CONFIRMED"
	SaleOrderStatusPended    SaleOrderStatus = "PENDED"
	SaleOrderStatusRejected  SaleOrderStatus = "REJECTED"
	SaleOrderStatusCompleted SaleOrderStatus = "COMPLETED"
	SaleOrderStatusCancelled SaleOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SaleOrderStatus
func (s SaleOrderStatus) IsValid() bool {
	switch s {
	case SaleOrderStatusPlaced, SaleOrderStatusConfirmed, SaleOrderStatusPended,
		SaleOrderStatusRejected, SaleOrderStatusCompleted, SaleOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SaleOrderStatus
func (s SaleOrderStatus) String() string {
	return string(s)
}

// IsActive returns true for statuses that count toward aggregation.
// Rejected and cancelled orders never contribute to supplier demand.
func (s SaleOrderStatus) IsActive() bool {
	switch s {
	case SaleOrderStatusPlaced, SaleOrderStatusConfirmed, SaleOrderStatusPended:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleOrderStatus) CanTransitionTo(target SaleOrderStatus) bool {
	switch s {
	case SaleOrderStatusPlaced:
		return target == SaleOrderStatusConfirmed || target == SaleOrderStatusPended ||
			target == SaleOrderStatusRejected || target == SaleOrderStatusCancelled
	case SaleOrderStatusPended:
		return target == SaleOrderStatusConfirmed || target == SaleOrderStatusRejected ||
			target == SaleOrderStatusCancelled
	case SaleOrderStatusConfirmed:
		return target == SaleOrderStatusCompleted || target == SaleOrderStatusCancelled
	case SaleOrderStatusRejected, SaleOrderStatusCompleted, SaleOrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// ConfirmationStatus classifies an order relative to the cycle confirmation
type ConfirmationStatus string

const (
	// ConfirmationStatusUnset marks orders created before the cycle
	// controller stamped them; treated like regular during confirmation.
	ConfirmationStatusUnset      ConfirmationStatus = ""
	ConfirmationStatusRegular    ConfirmationStatus = "REGULAR"
	ConfirmationStatusAdditional ConfirmationStatus = "ADDITIONAL"
)

// String returns the string representation of ConfirmationStatus
func (s ConfirmationStatus) String() string {
	return string(s)
}

// CutoffStatus records the order's relationship to the cutoff window at creation time
type CutoffStatus string

const (
	CutoffStatusWithin CutoffStatus = "WITHIN_CUTOFF"
	CutoffStatusAfter  CutoffStatus = "AFTER_CUTOFF"
)

// String returns the string representation of CutoffStatus
func (s CutoffStatus) String() string {
	return string(s)
}

// SaleOrderItem represents a line item in a sale order
type SaleOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleOrderItem) TableName() string {
	return "sale_order_items"
}

// NewSaleOrderItem creates a new sale order line item
func NewSaleOrderItem(orderID, productID uuid.UUID, productName, productCode, unit string, quantity decimal.Decimal, unitPrice valueobject.Money) (*SaleOrderItem, error) {
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
	return &SaleOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		ProductCode: productCode,
		Quantity:    quantity,
		Unit:        unit,
		UnitPrice:   unitPrice.Amount(),
		LineTotal:   quantity.Mul(unitPrice.Amount()),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// GetLineTotalMoney returns the line total as Money value object
func (i *SaleOrderItem) GetLineTotalMoney() valueobject.Money {
	return valueobject.NewMoneyMMK(i.LineTotal)
}

// SaleOrder represents a customer order aggregate root.
// Orders are the raw input of the daily aggregation; they carry a cutoff
// tag and a confirmation classification stamped at creation time.
type SaleOrder struct {
	shared.BaseAggregateRoot
	OrderNumber        string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID         uuid.UUID          `gorm:"type:uuid;not null;index"`
	CustomerName       string             `gorm:"type:varchar(200);not null"`
	Category           string             `gorm:"type:varchar(50);not null;index"`
	Items              []SaleOrderItem    `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount        decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Status             SaleOrderStatus    `gorm:"type:varchar(20);not null;default:'PLACED';index"`
	ConfirmationStatus ConfirmationStatus `gorm:"type:varchar(20);index"`
	CutoffStatus       CutoffStatus       `gorm:"type:varchar(20);not null"`
	PlacedAt           time.Time          `gorm:"not null;index"`
	ConfirmedAt        *time.Time
	PendedAt           *time.Time
	RejectedAt         *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	RejectReason       string `gorm:"type:varchar(500)"`
	Remark             string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SaleOrder) TableName() string {
	return "sale_orders"
}

// NewSaleOrder creates a new sale order.
// Status, confirmation status, and cutoff status are decided by the
// cycle controller at creation time, not by the caller directly.
func NewSaleOrder(orderNumber string, customerID uuid.UUID, customerName, category string, status SaleOrderStatus, confirmation ConfirmationStatus, cutoff CutoffStatus) (*SaleOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Invalid sale order status: %s", status))
	}

	now := time.Now()
	order := &SaleOrder{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		OrderNumber:        orderNumber,
		CustomerID:         customerID,
		CustomerName:       customerName,
		Category:           category,
		Items:              make([]SaleOrderItem, 0),
		TotalAmount:        decimal.Zero,
		Status:             status,
		ConfirmationStatus: confirmation,
		CutoffStatus:       cutoff,
		PlacedAt:           now,
	}
	if status == SaleOrderStatusConfirmed {
		order.ConfirmedAt = &now
	}
	return order, nil
}

// AddItem adds a new line item to the order.
// Only allowed while the order is still PLACED or PENDED.
func (o *SaleOrder) AddItem(productID uuid.UUID, productName, productCode, unit string, quantity decimal.Decimal, unitPrice valueobject.Money) (*SaleOrderItem, error) {
	if o.Status != SaleOrderStatusPlaced && o.Status != SaleOrderStatusPended {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add items to order in %s status", o.Status))
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order")
		}
	}

	item, err := NewSaleOrderItem(o.ID, productID, productName, productCode, unit, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return item, nil
}

// Confirm transitions the order to CONFIRMED
func (o *SaleOrder) Confirm() error {
	if o.Status == SaleOrderStatusConfirmed {
		return nil // already confirmed, treat as no-op for bulk flows
	}
	if !o.Status.CanTransitionTo(SaleOrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = SaleOrderStatusConfirmed
	o.ConfirmedAt = &now
	if o.ConfirmationStatus == ConfirmationStatusUnset {
		o.ConfirmationStatus = ConfirmationStatusRegular
	}
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Pend parks the order for manual review
func (o *SaleOrder) Pend() error {
	if !o.Status.CanTransitionTo(SaleOrderStatusPended) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pend order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = SaleOrderStatusPended
	o.PendedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Reject rejects the order with a reason
func (o *SaleOrder) Reject(reason string) error {
	if !o.Status.CanTransitionTo(SaleOrderStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject order in %s status", o.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}
	now := time.Now()
	o.Status = SaleOrderStatusRejected
	o.RejectedAt = &now
	o.RejectReason = reason
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Complete transitions the order to COMPLETED
func (o *SaleOrder) Complete() error {
	if !o.Status.CanTransitionTo(SaleOrderStatusCompleted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = SaleOrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// Cancel cancels the order
func (o *SaleOrder) Cancel() error {
	if !o.Status.CanTransitionTo(SaleOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	now := time.Now()
	o.Status = SaleOrderStatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()
	return nil
}

// CanDelete returns true if the order may be physically deleted.
// Only pended orders are ever removed from the store.
func (o *SaleOrder) CanDelete() bool {
	return o.Status == SaleOrderStatusPended
}

// IsAdditional returns true if the order was placed after a cycle confirmation
func (o *SaleOrder) IsAdditional() bool {
	return o.ConfirmationStatus == ConfirmationStatusAdditional
}

// ItemCount returns the number of line items in the order
func (o *SaleOrder) ItemCount() int {
	return len(o.Items)
}

// GetTotalAmountMoney returns the order total as Money
func (o *SaleOrder) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMMK(o.TotalAmount)
}

func (o *SaleOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal)
	}
	o.TotalAmount = total
}
