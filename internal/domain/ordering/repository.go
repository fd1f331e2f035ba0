package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// SaleOrderRepository defines the persistence interface for sale orders
type SaleOrderRepository interface {
	// Save persists a sale order (create or update with optimistic locking)
	Save(ctx context.Context, order *SaleOrder) error

	// FindByID retrieves a sale order by ID, items preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*SaleOrder, error)

	// FindByOrderNumber retrieves a sale order by its business number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*SaleOrder, error)

	// FindActiveSince returns non-rejected, non-cancelled orders of the
	// given category with PlacedAt >= since, items preloaded, ordered by
	// PlacedAt ascending. This is the aggregation input query.
	FindActiveSince(ctx context.Context, category string, since time.Time) ([]*SaleOrder, error)

	// FindPlacedBetween returns orders with status PLACED and
	// confirmation status REGULAR or unset, placed in [from, to].
	// This is the bulk-confirmation input query.
	FindPlacedBetween(ctx context.Context, from, to time.Time) ([]*SaleOrder, error)

	// List returns a page of sale orders matching the filter
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[*SaleOrder], error)

	// Delete removes a sale order. Only pended orders may be deleted;
	// the repository returns INVALID_STATE for any other status.
	Delete(ctx context.Context, id uuid.UUID) error
}
