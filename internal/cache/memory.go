package cache

import (
	"context"
	"sync"
	"time"

	"github.com/alphalens/backend/internal/contracts"
)

// Memory is an in-process ProviderCache. Used in tests and when caching
// is effectively disabled; entries do not survive a restart.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]contracts.CacheEntry
}

// NewMemory creates an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]contracts.CacheEntry),
	}
}

// Get returns the entry for key. Expired entries are removed lazily and
// reported as misses.
func (m *Memory) Get(ctx context.Context, key string) (*contracts.CacheEntry, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	if entry.Expired(time.Now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false, nil
	}

	return &entry, true, nil
}

// Set stores an entry, replacing any previous value wholesale.
func (m *Memory) Set(ctx context.Context, entry *contracts.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[entry.Key] = *entry
	return nil
}

// Delete removes an entry.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// ClearExpired removes all expired entries and returns the count.
func (m *Memory) ClearExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	count := 0
	for key, entry := range m.entries {
		if entry.Expired(now) {
			delete(m.entries, key)
			count++
		}
	}

	return count, nil
}

// Len returns the number of stored entries, expired or not (tests).
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
