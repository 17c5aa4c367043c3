package runstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalens/backend/internal/contracts"
)

func sampleRun(runID, userID string, createdAt time.Time) *contracts.RecommendationResult {
	return &contracts.RecommendationResult{
		RunID:   runID,
		UserID:  userID,
		Tickers: []string{"AAPL", "MSFT"},
		Horizon: contracts.HorizonOneMonth,
		Scores: []contracts.StockScore{
			{Ticker: "AAPL", CompositeScore: 72.5, Rank: 1, AllocationPct: 55.0},
			{Ticker: "MSFT", CompositeScore: 59.3, Rank: 2, AllocationPct: 45.0},
		},
		CreatedAt: createdAt,
	}
}

func TestMemorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	run := sampleRun("run-1", "user-1", time.Now().UTC())
	id, err := store.Save(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)

	got, err := store.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, contracts.ErrRunNotFound)
}

func TestMemoryGetByUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		run := sampleRun(fmt.Sprintf("run-%d", i), "user-1", base.Add(time.Duration(i)*time.Hour))
		_, err := store.Save(ctx, run)
		require.NoError(t, err)
	}
	_, err := store.Save(ctx, sampleRun("other", "user-2", base))
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		summaries, err := store.GetByUser(ctx, "user-1", 10, 0)
		require.NoError(t, err)
		require.Len(t, summaries, 5)
		assert.Equal(t, "run-4", summaries[0].RunID)
		assert.Equal(t, "run-0", summaries[4].RunID)
		assert.Equal(t, "AAPL", summaries[0].TopPick)
	})

	t.Run("pagination", func(t *testing.T) {
		summaries, err := store.GetByUser(ctx, "user-1", 2, 1)
		require.NoError(t, err)
		require.Len(t, summaries, 2)
		assert.Equal(t, "run-3", summaries[0].RunID)
		assert.Equal(t, "run-2", summaries[1].RunID)
	})

	t.Run("offset past end", func(t *testing.T) {
		summaries, err := store.GetByUser(ctx, "user-1", 10, 100)
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("isolated per user", func(t *testing.T) {
		summaries, err := store.GetByUser(ctx, "user-2", 10, 0)
		require.NoError(t, err)
		assert.Len(t, summaries, 1)
	})
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, err := store.Save(ctx, sampleRun("run-1", "user-1", time.Now().UTC()))
	require.NoError(t, err)

	deleted, err := store.Delete(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 0, store.Len())

	deleted, err = store.Delete(ctx, "run-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}
