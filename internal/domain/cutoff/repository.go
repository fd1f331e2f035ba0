package cutoff

import "context"

// WindowRepository defines the persistence interface for the cutoff window singleton
type WindowRepository interface {
	// Get returns the singleton window record, or shared.ErrNotFound
	// if it has never been created
	Get(ctx context.Context) (*Window, error)

	// Save persists the window (create or update with optimistic locking)
	Save(ctx context.Context, window *Window) error
}

// CycleRepository defines the persistence interface for the order cycle singleton
type CycleRepository interface {
	// Get returns the singleton cycle record, or shared.ErrNotFound
	// if it has never been created
	Get(ctx context.Context) (*Cycle, error)

	// Save persists the cycle (create or update with optimistic locking)
	Save(ctx context.Context, cycle *Cycle) error
}
