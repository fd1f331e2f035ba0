package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
)

// PurchaseLedgerItem is one received line in a ledger entry
type PurchaseLedgerItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	LedgerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	Category    string          `gorm:"type:varchar(50);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Unit        string          `gorm:"type:varchar(20);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Actual received price
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseLedgerItem) TableName() string {
	return "purchase_ledger_items"
}

// PurchaseLedger is the immutable record of what was actually received
// and paid for against a purchase order. It is created once inside the
// inbound transaction and never mutated afterwards; it is the system of
// record, as opposed to the purchase order which records what was asked.
type PurchaseLedger struct {
	shared.BaseAggregateRoot
	LedgerNumber    string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID            `gorm:"type:uuid;not null;index"`
	OrderNumber     string               `gorm:"type:varchar(50);not null"`
	SupplierID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	SupplierName    string               `gorm:"type:varchar(200);not null"` // Snapshot at receipt time
	Items           []PurchaseLedgerItem `gorm:"foreignKey:LedgerID;references:ID"`
	TotalAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	ReceivedAt      time.Time            `gorm:"not null;index"`
	ReceivedBy      string               `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (PurchaseLedger) TableName() string {
	return "purchase_ledgers"
}

// LedgerLine carries the resolved values for one ledger item at build time
type LedgerLine struct {
	ProductID   uuid.UUID
	ProductName string
	ProductCode string
	Category    string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
}

// NewPurchaseLedger builds an immutable ledger entry from resolved lines.
// TotalAmount is computed here as the sum of line totals; callers never
// pass it in.
func NewPurchaseLedger(ledgerNumber string, order *PurchaseOrder, lines []LedgerLine, receivedBy string) (*PurchaseLedger, error) {
	if ledgerNumber == "" {
		return nil, shared.NewDomainError("INVALID_LEDGER_NUMBER", "Ledger number cannot be empty")
	}
	if order == nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Purchase order cannot be nil")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Ledger must have at least one line")
	}
	if receivedBy == "" {
		return nil, shared.NewDomainError("INVALID_ACTOR", "ReceivedBy cannot be empty")
	}

	now := time.Now()
	ledger := &PurchaseLedger{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LedgerNumber:      ledgerNumber,
		PurchaseOrderID:   order.ID,
		OrderNumber:       order.OrderNumber,
		SupplierID:        order.SupplierID,
		SupplierName:      order.SupplierName,
		Items:             make([]PurchaseLedgerItem, 0, len(lines)),
		TotalAmount:       decimal.Zero,
		ReceivedAt:        now,
		ReceivedBy:        receivedBy,
	}

	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity.IsNegative() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Received quantity cannot be negative")
		}
		if line.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("MISSING_PRICE", "Received unit price must be positive")
		}
		lineTotal := line.Quantity.Mul(line.UnitPrice)
		ledger.Items = append(ledger.Items, PurchaseLedgerItem{
			ID:          uuid.New(),
			LedgerID:    ledger.ID,
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			ProductCode: line.ProductCode,
			Category:    line.Category,
			Quantity:    line.Quantity,
			Unit:        line.Unit,
			UnitPrice:   line.UnitPrice,
			LineTotal:   lineTotal,
			CreatedAt:   now,
		})
		total = total.Add(lineTotal)
	}
	ledger.TotalAmount = total

	return ledger, nil
}

// GetTotalAmountMoney returns the ledger total as Money
func (l *PurchaseLedger) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMMK(l.TotalAmount)
}

// ItemCount returns the number of received lines
func (l *PurchaseLedger) ItemCount() int {
	return len(l.Items)
}
