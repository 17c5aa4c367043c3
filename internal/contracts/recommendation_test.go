package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTickers(t *testing.T) {
	t.Run("uppercases, trims and dedupes", func(t *testing.T) {
		got, err := NormalizeTickers([]string{" aapl ", "MSFT", "aapl"})
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL", "MSFT"}, got)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := NormalizeTickers(nil)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects bad symbols", func(t *testing.T) {
		for _, bad := range []string{"", "TOOLONG", "BRK.B", "12AB"} {
			_, err := NormalizeTickers([]string{bad})
			assert.Error(t, err, "symbol %q should be rejected", bad)
		}
	})
}

func TestParseHorizon(t *testing.T) {
	h, err := ParseHorizon(" 1m ")
	require.NoError(t, err)
	assert.Equal(t, HorizonOneMonth, h)

	_, err = ParseHorizon("2W")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestPlanLimitsAllowsHorizon(t *testing.T) {
	limits := PlanLimits{AllowedHorizons: []Horizon{HorizonOneMonth}}
	assert.True(t, limits.AllowsHorizon(HorizonOneMonth))
	assert.False(t, limits.AllowsHorizon(HorizonOneYear))
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Now()
	entry := CacheEntry{ExpiresAt: now.Add(time.Minute)}
	assert.False(t, entry.Expired(now))
	assert.True(t, entry.Expired(now.Add(2*time.Minute)))
	assert.True(t, entry.Expired(entry.ExpiresAt), "expiry boundary counts as expired")
}

func TestSummarize(t *testing.T) {
	result := RecommendationResult{
		RunID:   "run-1",
		Tickers: []string{"AAPL", "MSFT"},
		Horizon: HorizonOneMonth,
		Scores: []StockScore{
			{Ticker: "MSFT", CompositeScore: 80.5, Rank: 1, AllocationPct: 60},
			{Ticker: "AAPL", CompositeScore: 54.2, Rank: 2, AllocationPct: 40},
		},
		CreatedAt: time.Now(),
	}

	s := result.Summarize()
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, "MSFT", s.TopPick)
	assert.Equal(t, 80.5, s.TopScore)
	assert.InDelta(t, 100.0, result.TotalAllocation(), 0.1)
}
