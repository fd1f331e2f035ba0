package purchasing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines the persistence interface for purchase orders
type PurchaseOrderRepository interface {
	// Save persists a purchase order (create or update with optimistic locking)
	Save(ctx context.Context, order *PurchaseOrder) error

	// FindByID retrieves a purchase order by ID, items preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByOrderNumber retrieves a purchase order by its business number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)

	// FindBySupplierCategoryPlacedBetween returns orders for the given
	// supplier and category with PlacedAt in [from, to]. This is the
	// duplicate-detection query around lastConfirmedAt.
	FindBySupplierCategoryPlacedBetween(ctx context.Context, supplierID uuid.UUID, category string, from, to time.Time) ([]*PurchaseOrder, error)

	// FindByIDs returns orders for the given IDs, items preloaded,
	// preserving existence only (missing IDs are simply absent)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*PurchaseOrder, error)

	// List returns a page of purchase orders matching the filter
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*PurchaseOrder], error)
}

// PurchaseLedgerRepository defines the persistence interface for ledgers.
// Ledgers are append-only: there is no update or delete.
type PurchaseLedgerRepository interface {
	// Create persists a new ledger entry with its items
	Create(ctx context.Context, ledger *PurchaseLedger) error

	// FindByID retrieves a ledger by ID, items preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseLedger, error)

	// FindByPurchaseOrderID returns ledgers created against an order
	FindByPurchaseOrderID(ctx context.Context, orderID uuid.UUID) ([]*PurchaseLedger, error)

	// List returns a page of ledgers matching the filter
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*PurchaseLedger], error)
}

// SupplierAccountRepository defines the persistence interface for supplier accounts
type SupplierAccountRepository interface {
	// Save persists an account (create or update with optimistic locking)
	Save(ctx context.Context, account *SupplierAccount) error

	// FindBySupplierID retrieves the account for a supplier, or
	// shared.ErrNotFound if none exists yet
	FindBySupplierID(ctx context.Context, supplierID uuid.UUID) (*SupplierAccount, error)

	// List returns a page of accounts matching the filter
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*SupplierAccount], error)
}
