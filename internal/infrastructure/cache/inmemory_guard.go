package cache

import (
	"context"
	gosync "sync"
	"time"

	"github.com/syncbridge/backend/internal/domain/sync"
)

// entry represents a held guard key with expiration
type entry struct {
	expiresAt time.Time
}

// InMemoryGuard implements sync.InFlightGuard using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryGuard struct {
	mu        gosync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        gosync.WaitGroup
	closeOnce gosync.Once
}

// NewInMemoryGuard creates a new in-memory guard.
// It starts a background goroutine to clean up expired keys.
func NewInMemoryGuard() *InMemoryGuard {
	guard := &InMemoryGuard{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	guard.wg.Add(1)
	go guard.cleanupLoop()

	return guard
}

// Acquire takes the guard key with a TTL.
// Returns true if the key was newly taken, false if another sync for the
// same key is still in flight.
func (g *InMemoryGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if e, exists := g.entries[key]; exists {
		if time.Now().Before(e.expiresAt) {
			return false, nil
		}
		// expired key is overwritten below
	}

	g.entries[key] = entry{
		expiresAt: time.Now().Add(ttl),
	}

	return true, nil
}

// Release frees the guard key. Releasing an unheld key is not an error.
func (g *InMemoryGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}

// Close stops the cleanup goroutine and releases resources.
// Safe to call multiple times.
func (g *InMemoryGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired keys
func (g *InMemoryGuard) cleanupLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

// cleanup removes expired keys from the guard
func (g *InMemoryGuard) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for key, e := range g.entries {
		if now.After(e.expiresAt) {
			delete(g.entries, key)
		}
	}
}

// Size returns the number of held keys (for testing/monitoring)
func (g *InMemoryGuard) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// Ensure InMemoryGuard implements sync.InFlightGuard
var _ sync.InFlightGuard = (*InMemoryGuard)(nil)
