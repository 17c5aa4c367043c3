package recommend

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalens/backend/internal/cache"
	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/internal/gateway"
	"github.com/alphalens/backend/internal/providers/mock"
	"github.com/alphalens/backend/internal/runstore"
	"github.com/alphalens/backend/internal/scoring"
	"github.com/alphalens/backend/pkg/config"
	"github.com/alphalens/backend/pkg/logger"
)

// countingMarket counts upstream calls and delegates to the mock.
type countingMarket struct {
	inner contracts.MarketDataProvider
	calls atomic.Int64
}

func (c *countingMarket) Name() string { return "counting_market" }

func (c *countingMarket) PriceHistory(ctx context.Context, ticker string, days int) (*contracts.PriceSeries, error) {
	c.calls.Add(1)
	return c.inner.PriceHistory(ctx, ticker, days)
}

type fixture struct {
	service *Service
	store   *runstore.Memory
	market  *countingMarket
}

func newFixture() *fixture {
	cfg := &config.Config{
		Cache: config.CacheConfig{
			MarketTTL:       time.Minute,
			FundamentalsTTL: time.Minute,
			NewsTTL:         time.Minute,
		},
	}

	market := &countingMarket{inner: mock.NewMarketData()}
	gw := gateway.New(gateway.Options{
		Market:               market,
		Sentiment:            mock.NewSentiment(),
		FallbackMarket:       mock.NewMarketData(),
		FallbackFundamentals: mock.NewFundamentals(),
		FallbackNews:         mock.NewNews(),
		Cache:                cache.NewMemory(),
		Logger:               logger.NewNop(),
		Config:               cfg,
	})

	store := runstore.NewMemory()
	return &fixture{
		service: NewService(gw, store, logger.NewNop(), 10),
		store:   store,
		market:  market,
	}
}

func proLimits() contracts.PlanLimits {
	return contracts.PlanLimits{
		MaxTickers:      5,
		AllowedHorizons: contracts.AllHorizons,
	}
}

func TestRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	result, err := f.service.Run(ctx, Request{
		UserID:     "user-1",
		Tickers:    []string{"aapl", "MSFT"},
		Horizon:    "1M",
		PlanLimits: proLimits(),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, []string{"AAPL", "MSFT"}, result.Tickers, "tickers are normalized")
	assert.Equal(t, contracts.HorizonOneMonth, result.Horizon)

	require.Len(t, result.Scores, 2)
	assert.Equal(t, 1, result.Scores[0].Rank)
	assert.Equal(t, 2, result.Scores[1].Rank)
	assert.GreaterOrEqual(t, result.Scores[0].CompositeScore, result.Scores[1].CompositeScore)
	assert.True(t, scoring.AllocationsSumTo100(result.Scores))

	require.Len(t, result.Evidence, 2)
	for i, packet := range result.Evidence {
		assert.Equal(t, result.Tickers[i], packet.Ticker, "evidence follows request order")
		assert.NotEmpty(t, packet.Articles)
		assert.Equal(t, "counting_market", packet.Attribution.Market.Provider)
	}

	// The run must be retrievable by its owner.
	stored, err := f.service.GetRun(ctx, "user-1", result.RunID)
	require.NoError(t, err)
	assert.Equal(t, result.RunID, stored.RunID)
}

func TestRunDeterministicScores(t *testing.T) {
	ctx := context.Background()

	run := func() *contracts.RecommendationResult {
		f := newFixture()
		result, err := f.service.Run(ctx, Request{
			UserID:     "user-1",
			Tickers:    []string{"AAPL", "MSFT", "NVDA"},
			Horizon:    "3M",
			PlanLimits: proLimits(),
		})
		require.NoError(t, err)
		return result
	}

	first := run()
	second := run()

	require.Len(t, second.Scores, len(first.Scores))
	for i := range first.Scores {
		assert.Equal(t, first.Scores[i].Ticker, second.Scores[i].Ticker)
		assert.Equal(t, first.Scores[i].CompositeScore, second.Scores[i].CompositeScore)
		assert.Equal(t, first.Scores[i].AllocationPct, second.Scores[i].AllocationPct)
	}
}

func TestRunValidation(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		req  Request
	}{
		{
			name: "no tickers",
			req:  Request{UserID: "u", Tickers: nil, Horizon: "1M", PlanLimits: proLimits()},
		},
		{
			name: "invalid ticker",
			req:  Request{UserID: "u", Tickers: []string{"TOOLONG1"}, Horizon: "1M", PlanLimits: proLimits()},
		},
		{
			name: "invalid horizon",
			req:  Request{UserID: "u", Tickers: []string{"AAPL"}, Horizon: "2W", PlanLimits: proLimits()},
		},
		{
			name: "too many tickers for plan",
			req: Request{
				UserID:     "u",
				Tickers:    []string{"AAPL", "MSFT", "NVDA", "META"},
				Horizon:    "1M",
				PlanLimits: contracts.PlanLimits{MaxTickers: 3, AllowedHorizons: contracts.AllHorizons},
			},
		},
		{
			name: "horizon not in plan",
			req: Request{
				UserID:     "u",
				Tickers:    []string{"AAPL"},
				Horizon:    "1Y",
				PlanLimits: contracts.PlanLimits{MaxTickers: 3, AllowedHorizons: []contracts.Horizon{contracts.HorizonOneMonth}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.service.Run(ctx, tc.req)
			require.Error(t, err)
			assert.True(t, contracts.IsValidationError(err), "expected a validation error, got %v", err)

			assert.Equal(t, int64(0), f.market.calls.Load(), "validation must reject before any provider call")
			assert.Equal(t, 0, f.store.Len(), "nothing may be persisted for a rejected run")
		})
	}
}

func TestGetRunOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	result, err := f.service.Run(ctx, Request{
		UserID:     "owner",
		Tickers:    []string{"AAPL"},
		Horizon:    "1M",
		PlanLimits: proLimits(),
	})
	require.NoError(t, err)

	_, err = f.service.GetRun(ctx, "someone-else", result.RunID)
	assert.ErrorIs(t, err, contracts.ErrRunNotFound, "foreign runs must read as not found")
}

func TestDuplicateTickersCollapse(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	result, err := f.service.Run(ctx, Request{
		UserID:     "user-1",
		Tickers:    []string{"AAPL", "aapl", "AAPL"},
		Horizon:    "1M",
		PlanLimits: proLimits(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL"}, result.Tickers)
	require.Len(t, result.Scores, 1)
	assert.InDelta(t, 100.0, result.Scores[0].AllocationPct, 0.01, "single ticker gets the full allocation")
}
