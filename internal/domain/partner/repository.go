package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// SupplierRepository defines the persistence interface for suppliers
type SupplierRepository interface {
	// Save persists a supplier (create or update with optimistic locking)
	Save(ctx context.Context, supplier *Supplier) error

	// FindByID retrieves a supplier by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByIDs retrieves suppliers for the given IDs; missing IDs are
	// simply absent from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Supplier, error)

	// FindByCode retrieves a supplier by its business code
	FindByCode(ctx context.Context, code string) (*Supplier, error)

	// List returns a page of suppliers matching the filter
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Supplier], error)
}
