package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// ProductRepository defines the persistence interface for products
type ProductRepository interface {
	// Save persists a product (create or update with optimistic locking)
	Save(ctx context.Context, product *Product) error

	// FindByID retrieves a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs retrieves products for the given IDs; missing IDs are
	// simply absent from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// FindByCode retrieves a product by its business code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// List returns a page of products matching the filter
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*Product], error)
}
