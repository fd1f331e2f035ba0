package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/domain/shared/valueobject"
)

// Product represents a distributed good. Each product belongs to one
// category and is sourced from exactly one supplier; the aggregation
// engine relies on that mapping to bucket order lines.
type Product struct {
	shared.BaseAggregateRoot
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Category      string          `gorm:"type:varchar(50);not null;index"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Unit          string          `gorm:"type:varchar(20);not null"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Reference price, updated on inbound
	IsActive      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name, category string, supplierID uuid.UUID, unit string, salePrice, purchasePrice valueobject.Money) (*Product, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if salePrice.Amount().IsNegative() || purchasePrice.Amount().IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Category:          category,
		SupplierID:        supplierID,
		Unit:              unit,
		SalePrice:         salePrice.Amount(),
		PurchasePrice:     purchasePrice.Amount(),
		IsActive:          true,
	}, nil
}

// UpdatePurchasePrice records the latest actual inbound price as the
// new reference purchase price
func (p *Product) UpdatePurchasePrice(price valueobject.Money) error {
	if price.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_PRICE", "Purchase price must be positive")
	}
	p.PurchasePrice = price.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UpdateSalePrice changes the sale price
func (p *Product) UpdateSalePrice(price valueobject.Money) error {
	if price.Amount().IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Sale price cannot be negative")
	}
	p.SalePrice = price.Amount()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate removes the product from active assortment
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// GetPurchasePriceMoney returns the reference purchase price as Money
func (p *Product) GetPurchasePriceMoney() valueobject.Money {
	return valueobject.NewMoneyMMK(p.PurchasePrice)
}

// GetSalePriceMoney returns the sale price as Money
func (p *Product) GetSalePriceMoney() valueobject.Money {
	return valueobject.NewMoneyMMK(p.SalePrice)
}
