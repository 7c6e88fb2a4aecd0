// Package cache provides the snapshot cache used by the directory client.
//
// The rule engine itself never caches: attribution must be re-derivable
// fresh on every call. Caching lives here, as an explicit injected
// collaborator with its own TTL and invalidation policy.
package cache

import (
	"context"
	"sync"
	"time"
)

// Store is the snapshot cache contract. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the cached value for key; found is false on miss or
	// expiry.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores the value under key for at most ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete invalidates key immediately.
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a process-local Store for single-instance and test use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get implements Store. Expired entries are dropped on access; there is no
// background sweeper, acceptable for the handful of snapshot keys in play.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
