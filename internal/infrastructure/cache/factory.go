package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/freshsupply/backend/internal/domain/shared"
	"github.com/freshsupply/backend/internal/infrastructure/config"
)

// LockStoreFactory creates operation lock stores based on configuration
type LockStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// LockStoreFactoryOption is a functional option for configuring the factory
type LockStoreFactoryOption func(*LockStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) LockStoreFactoryOption {
	return func(f *LockStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// store when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) LockStoreFactoryOption {
	return func(f *LockStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewLockStoreFactory creates a new factory
func NewLockStoreFactory(cfg config.RedisConfig, opts ...LockStoreFactoryOption) *LockStoreFactory {
	f := &LockStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore creates a lock store. When Redis is enabled it is tried
// first; a connection failure falls back to the in-memory store unless
// fallback is disallowed. A single-instance deployment runs fine on
// the in-memory store; only multi-instance deployments need Redis.
func (f *LockStoreFactory) CreateStore() (shared.OperationLockStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Redis disabled, using in-memory operation lock store")
		return NewInMemoryLockStore(), nil
	}

	store, err := NewRedisLockStore(f.redisConfig.Addr(), f.redisConfig.Password, f.redisConfig.DB)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("failed to create Redis lock store: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory operation lock store",
			zap.String("addr", f.redisConfig.Addr()),
			zap.Error(err))
		return NewInMemoryLockStore(), nil
	}

	f.logger.Info("Using Redis operation lock store",
		zap.String("addr", f.redisConfig.Addr()))
	return store, nil
}
