package purchasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
)

// SupplierAccount tracks the running balance owed to a supplier.
// Invariant: CurrentBalance == TotalPurchaseAmount - TotalPaidAmount at
// all times; the account is only mutated inside the same transaction
// that creates the ledger entry or payment record driving the change.
type SupplierAccount struct {
	shared.BaseAggregateRoot
	SupplierID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SupplierName        string          `gorm:"type:varchar(200);not null"`
	TotalPurchaseAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPaidAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CurrentBalance      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TransactionCount    int             `gorm:"not null;default:0"`
	LastPurchaseDate    *time.Time
	LastPaymentDate     *time.Time
}

// TableName returns the table name for GORM
func (SupplierAccount) TableName() string {
	return "supplier_accounts"
}

// NewSupplierAccount creates a zeroed account for a supplier
func NewSupplierAccount(supplierID uuid.UUID, supplierName string) (*SupplierAccount, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	return &SupplierAccount{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		TotalPurchaseAmount: decimal.Zero,
		TotalPaidAmount:     decimal.Zero,
		CurrentBalance:      decimal.Zero,
		TransactionCount:    0,
	}, nil
}

// RecordPurchase adds a ledger total to the purchase side of the account
func (a *SupplierAccount) RecordPurchase(amount valueobject.Money, at time.Time) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Purchase amount must be positive")
	}
	a.TotalPurchaseAmount = a.TotalPurchaseAmount.Add(amount.Amount())
	a.CurrentBalance = a.CurrentBalance.Add(amount.Amount())
	a.TransactionCount++
	a.LastPurchaseDate = &at
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// RecordPayment subtracts a payment from the balance
func (a *SupplierAccount) RecordPayment(amount valueobject.Money, at time.Time) error {
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	a.TotalPaidAmount = a.TotalPaidAmount.Add(amount.Amount())
	a.CurrentBalance = a.CurrentBalance.Sub(amount.Amount())
	a.TransactionCount++
	a.LastPaymentDate = &at
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}

// CheckInvariant reports whether the stored balance equals purchases
// minus payments. Used by tests and consistency audits.
func (a *SupplierAccount) CheckInvariant() bool {
	return a.CurrentBalance.Equal(a.TotalPurchaseAmount.Sub(a.TotalPaidAmount))
}

// GetCurrentBalanceMoney returns the balance as Money
func (a *SupplierAccount) GetCurrentBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyMMK(a.CurrentBalance)
}
