// Package runstore provides RunStore implementations: an in-memory
// store for development and tests, and a Postgres-backed store for
// production.
package runstore

import (
	"context"
	"sort"
	"sync"

	"github.com/alphalens/backend/internal/contracts"
)

// Memory is a mutex-guarded in-memory RunStore.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]*contracts.RecommendationResult
}

// NewMemory creates an empty in-memory run store.
func NewMemory() *Memory {
	return &Memory{runs: make(map[string]*contracts.RecommendationResult)}
}

// Save stores the result keyed by its run ID.
func (m *Memory) Save(ctx context.Context, result *contracts.RecommendationResult) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.runs[result.RunID] = result
	return result.RunID, nil
}

// GetByID returns a run, or ErrRunNotFound when absent.
func (m *Memory) GetByID(ctx context.Context, runID string) (*contracts.RecommendationResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result, ok := m.runs[runID]
	if !ok {
		return nil, contracts.ErrRunNotFound
	}
	return result, nil
}

// GetByUser returns run summaries for a user, newest first.
func (m *Memory) GetByUser(ctx context.Context, userID string, limit, offset int) ([]contracts.RecommendationSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []*contracts.RecommendationResult
	for _, r := range m.runs {
		if r.UserID == userID {
			results = append(results, r)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if offset >= len(results) {
		return []contracts.RecommendationSummary{}, nil
	}
	results = results[offset:]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	summaries := make([]contracts.RecommendationSummary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, r.Summarize())
	}
	return summaries, nil
}

// Delete removes a run. Returns false when the run did not exist.
func (m *Memory) Delete(ctx context.Context, runID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[runID]; !ok {
		return false, nil
	}
	delete(m.runs, runID)
	return true, nil
}

// Len returns the number of stored runs. Test helper.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}
