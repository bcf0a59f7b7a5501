package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/syncbridge/backend/internal/domain/sync"
)

// RedisGuard implements sync.InFlightGuard using Redis.
// This is suitable for distributed deployments where multiple instances
// must share in-flight state.
type RedisGuard struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisGuard creates a new Redis-based guard
func NewRedisGuard(cfg RedisConfig) (*RedisGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisGuard{
		client:    client,
		keyPrefix: "sync:inflight:",
	}, nil
}

// NewRedisGuardWithClient creates a guard with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisGuardWithClient(client *redis.Client, keyPrefix string) *RedisGuard {
	if keyPrefix == "" {
		keyPrefix = "sync:inflight:"
	}
	return &RedisGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Acquire takes the guard key with a TTL.
// Uses SETNX (SET if Not eXists) for an atomic operation; returns true if
// the key was set, false if another holder exists.
func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	result, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire guard key: %w", err)
	}
	return result, nil
}

// Release frees the guard key. Releasing an unheld key is not an error.
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release guard key: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisGuard) Close() error {
	return g.client.Close()
}

// Ensure RedisGuard implements sync.InFlightGuard
var _ sync.InFlightGuard = (*RedisGuard)(nil)
