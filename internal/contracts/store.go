package contracts

import (
	"context"
	"time"
)

// CacheEntry is one cached provider response. Entries are replaced
// wholesale on refresh, never mutated in place.
type CacheEntry struct {
	Key       string    `json:"key"`
	Provider  string    `json:"provider"`
	Ticker    string    `json:"ticker"`
	Data      []byte    `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its TTL at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// ProviderCache fronts external provider calls with a TTL store.
// Implementations must be safe for concurrent use; expired entries are
// never returned.
type ProviderCache interface {
	// Get returns the entry for key, or found=false on miss or expiry.
	Get(ctx context.Context, key string) (entry *CacheEntry, found bool, err error)

	// Set stores an entry, overwriting any previous value for the key.
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes an entry.
	Delete(ctx context.Context, key string) error

	// ClearExpired removes all expired entries and returns the count.
	ClearExpired(ctx context.Context) (int, error)
}

// RunStore persists and retrieves recommendation runs.
type RunStore interface {
	// Save persists a result and returns its run ID.
	Save(ctx context.Context, result *RecommendationResult) (string, error)

	// GetByID returns a run, or ErrRunNotFound when absent.
	GetByID(ctx context.Context, runID string) (*RecommendationResult, error)

	// GetByUser returns run summaries for a user, newest first.
	GetByUser(ctx context.Context, userID string, limit, offset int) ([]RecommendationSummary, error)

	// Delete removes a run. Returns false when the run did not exist.
	Delete(ctx context.Context, runID string) (bool, error)
}
