package purchasing

import (
	"context"

	"github.com/freshsupply/backend/internal/domain/catalog"
)

// InboundRepositories groups the repositories participating in one
// inbound reconciliation transaction. Implementations bind all of them
// to the same database transaction.
type InboundRepositories struct {
	Orders   PurchaseOrderRepository
	Ledgers  PurchaseLedgerRepository
	Accounts SupplierAccountRepository
	Products catalog.ProductRepository
}

// UnitOfWork runs a function inside a single database transaction.
// The ledger write, order completion, product price update, and account
// balance update of inbound reconciliation succeed or fail together;
// a partial ledger-without-balance state must never be observable.
type UnitOfWork interface {
	// Execute runs fn; if fn returns an error the whole transaction is
	// rolled back, otherwise it is committed
	Execute(ctx context.Context, fn func(ctx context.Context, repos InboundRepositories) error) error
}
