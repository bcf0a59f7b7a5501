// Package retry provides exponential-backoff retry for outbound platform
// calls. The delay doubles after each failed attempt; the final error is
// returned to the caller unmodified so sentinel checks keep working.
package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Config controls retry behavior
type Config struct {
	// MaxAttempts is the total number of invocations, including the first
	MaxAttempts int
	// InitialDelay is the pause before the first retry; it doubles after
	// every subsequent failure
	InitialDelay time.Duration
}

// DefaultConfig returns the standard retry policy for platform calls
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
	}
}

// Executor runs operations under a retry policy
type Executor struct {
	cfg    Config
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates a retry executor. A MaxAttempts below one is
// normalized to a single attempt.
func NewExecutor(cfg Config, logger *zap.Logger) *Executor {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Executor{
		cfg:    cfg,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Do invokes fn until it succeeds or the attempt budget is exhausted.
// Each retry waits InitialDelay * 2^(attempt-1). The error of the last
// attempt is returned as-is.
func Do[T any](ctx context.Context, e *Executor, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	delay := e.cfg.InitialDelay
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == e.cfg.MaxAttempts {
			break
		}

		e.logger.Warn("operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", e.cfg.MaxAttempts),
			zap.Duration("delay", delay),
			zap.Error(err))

		if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
		delay *= 2
	}

	e.logger.Error("operation failed after all attempts",
		zap.String("operation", operation),
		zap.Int("attempts", e.cfg.MaxAttempts),
		zap.Error(lastErr))
	return zero, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
