package shared

import (
	"context"
	"time"
)

// OperationLockStore serializes operator-level actions that must not run
// concurrently (cutoff close, cycle confirm). Acquire is atomic: the first
// caller wins, every other caller gets false until the TTL expires or the
// winner releases the key.
type OperationLockStore interface {
	// Acquire marks the key as held with a TTL.
	// Returns true if the key was newly acquired, false if already held.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees the key before its TTL expires
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
