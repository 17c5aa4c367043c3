package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalens/backend/internal/cache"
	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/internal/providers/mock"
	"github.com/alphalens/backend/pkg/config"
	"github.com/alphalens/backend/pkg/logger"
)

// countingMarket wraps the mock provider and counts upstream calls.
type countingMarket struct {
	inner contracts.MarketDataProvider
	mu    sync.Mutex
	calls int
	fail  bool
}

func (c *countingMarket) Name() string { return "counting_market" }

func (c *countingMarket) PriceHistory(ctx context.Context, ticker string, days int) (*contracts.PriceSeries, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()

	if c.fail {
		return nil, contracts.NewProviderError(c.Name(), ticker, errors.New("upstream down"))
	}
	return c.inner.PriceHistory(ctx, ticker, days)
}

func (c *countingMarket) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func testConfig() *config.Config {
	return &config.Config{
		Cache: config.CacheConfig{
			MarketTTL:       time.Minute,
			FundamentalsTTL: time.Minute,
			NewsTTL:         time.Minute,
		},
	}
}

func newTestGateway(market contracts.MarketDataProvider) *Gateway {
	return New(Options{
		Market:               market,
		Sentiment:            mock.NewSentiment(),
		FallbackMarket:       mock.NewMarketData(),
		FallbackFundamentals: mock.NewFundamentals(),
		FallbackNews:         mock.NewNews(),
		Cache:                cache.NewMemory(),
		Logger:               logger.NewNop(),
		Config:               testConfig(),
	})
}

func TestPriceHistoryCaching(t *testing.T) {
	ctx := context.Background()
	market := &countingMarket{inner: mock.NewMarketData()}
	gw := newTestGateway(market)

	first, attr1, err := gw.PriceHistory(ctx, "AAPL", 365)
	require.NoError(t, err)
	assert.False(t, attr1.Cached)
	assert.Equal(t, "counting_market", attr1.Provider)

	second, attr2, err := gw.PriceHistory(ctx, "AAPL", 365)
	require.NoError(t, err)
	assert.True(t, attr2.Cached)
	assert.Equal(t, "counting_market", attr2.Provider)
	assert.True(t, attr1.FetchedAt.Equal(attr2.FetchedAt), "cache hits keep the original fetch time")

	assert.Equal(t, 1, market.callCount(), "second request must be served from cache")
	assert.Equal(t, first.Closes, second.Closes)
}

func TestPriceHistoryFallback(t *testing.T) {
	ctx := context.Background()
	market := &countingMarket{inner: mock.NewMarketData(), fail: true}
	gw := newTestGateway(market)

	series, attr, err := gw.PriceHistory(ctx, "AAPL", 365)
	require.NoError(t, err, "provider failure must degrade to mock, not fail the fetch")
	assert.Equal(t, mock.MarketProviderName, attr.Provider)
	assert.False(t, attr.Cached)
	assert.Equal(t, 365, series.Len())
}

func TestPriceHistoryNoPrimary(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(nil)

	_, attr, err := gw.PriceHistory(ctx, "MSFT", 90)
	require.NoError(t, err)
	assert.Equal(t, mock.MarketProviderName, attr.Provider)
}

func TestFundamentalsAndNewsViaMock(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(nil)

	metrics, attr, err := gw.Fundamentals(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, mock.FundamentalsProviderName, attr.Provider)
	require.NotNil(t, metrics.PERatio)
	assert.Equal(t, 28.5, *metrics.PERatio)

	articles, newsAttr, err := gw.News(ctx, "AAPL", 10)
	require.NoError(t, err)
	assert.Equal(t, mock.NewsProviderName, newsAttr.Provider)
	assert.NotEmpty(t, articles)

	sentiment, analyzer, err := gw.Analyze(ctx, "AAPL", articles)
	require.NoError(t, err)
	assert.Equal(t, mock.SentimentAnalyzerName, analyzer)
	assert.Equal(t, len(articles), sentiment.ArticleCount)
}

func TestConcurrentFetchesCollapse(t *testing.T) {
	ctx := context.Background()
	market := &countingMarket{inner: mock.NewMarketData()}
	gw := newTestGateway(market)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := gw.PriceHistory(ctx, "NVDA", 365)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, market.callCount(), "concurrent identical fetches must collapse to one upstream call")
}
