package cache

import (
	"context"
	"sync"
	"time"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// lockEntry represents a held lock with its expiration
type lockEntry struct {
	expiresAt time.Time
}

// InMemoryLockStore implements OperationLockStore with an in-memory
// map. Suitable for single-instance deployments and testing; state is
// not shared across processes.
type InMemoryLockStore struct {
	mu        sync.Mutex
	entries   map[string]lockEntry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ shared.OperationLockStore = (*InMemoryLockStore)(nil)

// NewInMemoryLockStore creates an in-memory lock store. A background
// goroutine sweeps expired entries so abandoned locks do not pile up.
func NewInMemoryLockStore() *InMemoryLockStore {
	store := &InMemoryLockStore{
		entries:  make(map[string]lockEntry),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Acquire marks the key as held with a TTL. Returns false while a
// non-expired holder exists.
func (s *InMemoryLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}

	s.entries[key] = lockEntry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release frees the key before its TTL expires
func (s *InMemoryLockStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryLockStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryLockStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.removeExpired()
		}
	}
}

func (s *InMemoryLockStore) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
