package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/freshsupply/backend/internal/domain/purchasing"
)

// GormUnitOfWork implements purchasing.UnitOfWork on a single GORM
// transaction. All repositories handed to fn share the transaction, so
// the ledger write, order completion, price update, and balance update
// of an inbound commit or roll back together.
type GormUnitOfWork struct {
	db *gorm.DB
}

var _ purchasing.UnitOfWork = (*GormUnitOfWork)(nil)

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Execute runs fn inside a transaction, binding every inbound
// repository to it
func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos purchasing.InboundRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := purchasing.InboundRepositories{
			Orders:   NewGormPurchaseOrderRepository(tx),
			Ledgers:  NewGormPurchaseLedgerRepository(tx),
			Accounts: NewGormSupplierAccountRepository(tx),
			Products: NewGormProductRepository(tx),
		}
		return fn(ctx, repos)
	})
}
