package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freshsupply/backend/internal/domain/shared"
)

// RedisLockStore implements OperationLockStore using Redis. Suitable
// for multi-instance deployments where cutoff close and cycle confirm
// must serialize across processes.
type RedisLockStore struct {
	client    *redis.Client
	keyPrefix string
}

var _ shared.OperationLockStore = (*RedisLockStore)(nil)

// NewRedisLockStore creates a Redis-backed lock store and verifies the
// connection
func NewRedisLockStore(addr, password string, db int) (*RedisLockStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisLockStore{
		client:    client,
		keyPrefix: "op:lock:",
	}, nil
}

// NewRedisLockStoreWithClient creates a store with an existing Redis
// client, useful for testing or when sharing a client across components
func NewRedisLockStoreWithClient(client *redis.Client, keyPrefix string) *RedisLockStore {
	if keyPrefix == "" {
		keyPrefix = "op:lock:"
	}
	return &RedisLockStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire marks the key as held with a TTL. SETNX makes the first
// caller win atomically; everyone else gets false until the TTL
// expires or the holder releases.
func (s *RedisLockStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire operation lock: %w", err)
	}
	return acquired, nil
}

// Release frees the key before its TTL expires
func (s *RedisLockStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release operation lock: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisLockStore) Close() error {
	return s.client.Close()
}
