package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/syncbridge/backend/internal/domain/sync"
	"github.com/syncbridge/backend/internal/infrastructure/config"
)

// GuardFactory creates in-flight guards based on configuration
type GuardFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// GuardFactoryOption is a functional option for configuring the factory
type GuardFactoryOption func(*GuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) GuardFactoryOption {
	return func(f *GuardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory guard
// when Redis is unavailable. Default is true (allow fallback).
func WithInMemoryFallback(allow bool) GuardFactoryOption {
	return func(f *GuardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewGuardFactory creates a new factory
func NewGuardFactory(cfg config.RedisConfig, opts ...GuardFactoryOption) *GuardFactory {
	f := &GuardFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisGuard creates a Redis-based guard
func (f *GuardFactory) CreateRedisGuard() (sync.InFlightGuard, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	guard, err := NewRedisGuard(redisCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis guard: %w", err)
	}

	return guard, nil
}

// CreateInMemoryGuard creates an in-memory guard.
// WARNING: in-memory guards do not share state across process instances,
// which can allow duplicate in-flight syncs in distributed deployments.
func (f *GuardFactory) CreateInMemoryGuard() sync.InFlightGuard {
	return NewInMemoryGuard()
}

// CreateGuard creates a guard based on the configured backend.
// The "redis" backend falls back to in-memory when Redis is unreachable
// and AllowInMemoryFallback is true.
func (f *GuardFactory) CreateGuard(backend string) (sync.InFlightGuard, error) {
	if backend != "redis" {
		return f.CreateInMemoryGuard(), nil
	}

	guard, err := f.CreateRedisGuard()
	if err == nil {
		f.logger.Info("using Redis in-flight guard")
		return guard, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for in-flight guard but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory in-flight guard. "+
		"This may allow duplicate in-flight syncs in distributed deployments.",
		zap.Error(err),
	)
	return f.CreateInMemoryGuard(), nil
}
