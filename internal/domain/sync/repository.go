package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LogFilter defines filter criteria for sync attempt queries
type LogFilter struct {
	// Status filters by attempt status (optional)
	Status *Status
	// EntityType filters by the synced entity type (optional)
	EntityType *string
	// SyncType filters by sync type (optional)
	SyncType *Type
	// Limit caps the number of returned records
	Limit int
	// Offset skips records for pagination
	Offset int
}

// StatusCounts holds per-status attempt counts over a time window
type StatusCounts struct {
	Total      int64
	Successful int64
	Failed     int64
	Pending    int64
}

// LogRepository persists sync attempts. It is the only component allowed
// to touch the audit table; orchestrators go through the audit service.
type LogRepository interface {
	// Create inserts a new attempt
	Create(ctx context.Context, attempt *Attempt) error

	// Update persists state transitions of an existing attempt
	Update(ctx context.Context, attempt *Attempt) error

	// FindByID finds an attempt by its identifier
	FindByID(ctx context.Context, id uuid.UUID) (*Attempt, error)

	// FindAll finds attempts matching the filter, newest first
	FindAll(ctx context.Context, filter LogFilter) ([]Attempt, error)

	// CountByStatusSince counts attempts created at or after the given
	// instant, broken down by status
	CountByStatusSince(ctx context.Context, since time.Time) (StatusCounts, error)
}

// ConfigRepository persists small key/value configuration entries such as
// the stage mapping override set
type ConfigRepository interface {
	// Get returns the serialized value for a key, or shared.ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set creates or replaces the value for a key
	Set(ctx context.Context, key, value string) error

	// Delete removes a key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}

// InFlightGuard enforces at-most-one-in-flight per sync identity. Acquire
// returns false when another sync for the same key is already running.
type InFlightGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
