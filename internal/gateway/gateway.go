// Package gateway fronts all external data access. Every fetch goes
// cache first, then the configured provider, then the mock fallback;
// concurrent fetches for the same key are collapsed so the upstream is
// called at most once. Whatever served the data is recorded in the
// attribution.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alphalens/backend/internal/cache"
	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/pkg/config"
	"github.com/alphalens/backend/pkg/logger"
)

// Gateway mediates between the recommendation service and the data
// providers. Safe for concurrent use.
type Gateway struct {
	market       contracts.MarketDataProvider
	fundamentals contracts.FundamentalsProvider
	news         contracts.NewsProvider
	sentiment    contracts.SentimentAnalyzer

	fallbackMarket       contracts.MarketDataProvider
	fallbackFundamentals contracts.FundamentalsProvider
	fallbackNews         contracts.NewsProvider

	cache  contracts.ProviderCache
	logger *logger.Logger
	group  singleflight.Group

	marketTTL       time.Duration
	fundamentalsTTL time.Duration
	newsTTL         time.Duration
}

// Options configures a Gateway. Primary providers may be nil, in which
// case the corresponding fallback serves directly.
type Options struct {
	Market       contracts.MarketDataProvider
	Fundamentals contracts.FundamentalsProvider
	News         contracts.NewsProvider
	Sentiment    contracts.SentimentAnalyzer

	FallbackMarket       contracts.MarketDataProvider
	FallbackFundamentals contracts.FundamentalsProvider
	FallbackNews         contracts.NewsProvider

	Cache  contracts.ProviderCache
	Logger *logger.Logger
	Config *config.Config
}

// New creates a Gateway from options.
func New(opts Options) *Gateway {
	return &Gateway{
		market:               opts.Market,
		fundamentals:         opts.Fundamentals,
		news:                 opts.News,
		sentiment:            opts.Sentiment,
		fallbackMarket:       opts.FallbackMarket,
		fallbackFundamentals: opts.FallbackFundamentals,
		fallbackNews:         opts.FallbackNews,
		cache:                opts.Cache,
		logger:               opts.Logger,
		marketTTL:            opts.Config.Cache.MarketTTL,
		fundamentalsTTL:      opts.Config.Cache.FundamentalsTTL,
		newsTTL:              opts.Config.Cache.NewsTTL,
	}
}

// fetchResult carries a resolved payload through singleflight.
type fetchResult struct {
	data        []byte
	attribution contracts.Attribution
}

// PriceHistory returns the price series for a ticker, with attribution.
func (g *Gateway) PriceHistory(ctx context.Context, ticker string, days int) (*contracts.PriceSeries, contracts.Attribution, error) {
	key := cache.Key("market", "price_history", ticker, map[string]string{
		"days": fmt.Sprintf("%d", days),
	})

	res, err := g.fetch(ctx, key, ticker, g.marketTTL, func() ([]byte, string, error) {
		series, provider, err := g.loadPriceHistory(ctx, ticker, days)
		if err != nil {
			return nil, "", err
		}
		data, err := json.Marshal(series)
		return data, provider, err
	})
	if err != nil {
		return nil, contracts.Attribution{}, err
	}

	var series contracts.PriceSeries
	if err := json.Unmarshal(res.data, &series); err != nil {
		return nil, contracts.Attribution{}, fmt.Errorf("decode cached price series: %w", err)
	}
	return &series, res.attribution, nil
}

// Fundamentals returns fundamental metrics for a ticker, with attribution.
func (g *Gateway) Fundamentals(ctx context.Context, ticker string) (contracts.FundamentalMetrics, contracts.Attribution, error) {
	key := cache.Key("fundamentals", "metrics", ticker, nil)

	res, err := g.fetch(ctx, key, ticker, g.fundamentalsTTL, func() ([]byte, string, error) {
		metrics, provider, err := g.loadFundamentals(ctx, ticker)
		if err != nil {
			return nil, "", err
		}
		data, err := json.Marshal(metrics)
		return data, provider, err
	})
	if err != nil {
		return contracts.FundamentalMetrics{}, contracts.Attribution{}, err
	}

	var metrics contracts.FundamentalMetrics
	if err := json.Unmarshal(res.data, &metrics); err != nil {
		return contracts.FundamentalMetrics{}, contracts.Attribution{}, fmt.Errorf("decode cached fundamentals: %w", err)
	}
	return metrics, res.attribution, nil
}

// News returns recent articles for a ticker, with attribution.
func (g *Gateway) News(ctx context.Context, ticker string, maxArticles int) ([]contracts.NewsArticle, contracts.Attribution, error) {
	key := cache.Key("news", "articles", ticker, map[string]string{
		"max": fmt.Sprintf("%d", maxArticles),
	})

	res, err := g.fetch(ctx, key, ticker, g.newsTTL, func() ([]byte, string, error) {
		articles, provider, err := g.loadNews(ctx, ticker, maxArticles)
		if err != nil {
			return nil, "", err
		}
		data, err := json.Marshal(articles)
		return data, provider, err
	})
	if err != nil {
		return nil, contracts.Attribution{}, err
	}

	var articles []contracts.NewsArticle
	if err := json.Unmarshal(res.data, &articles); err != nil {
		return nil, contracts.Attribution{}, fmt.Errorf("decode cached articles: %w", err)
	}
	return articles, res.attribution, nil
}

// Analyze derives sentiment from articles. Sentiment is computed, not
// fetched, so it bypasses the cache.
func (g *Gateway) Analyze(ctx context.Context, ticker string, articles []contracts.NewsArticle) (contracts.SentimentData, string, error) {
	data, err := g.sentiment.Analyze(ctx, ticker, articles)
	return data, g.sentiment.Name(), err
}

// fetch resolves a key: cache hit, or a collapsed load with
// write-through. Cache failures degrade to a miss or a skipped write.
func (g *Gateway) fetch(ctx context.Context, key, ticker string, ttl time.Duration, load func() ([]byte, string, error)) (fetchResult, error) {
	if entry, found := g.cacheGet(ctx, key); found {
		return fetchResult{
			data: entry.Data,
			attribution: contracts.Attribution{
				Provider:  entry.Provider,
				FetchedAt: entry.FetchedAt,
				Cached:    true,
			},
		}, nil
	}

	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		// Recheck after winning the flight; a sibling may have
		// populated the cache between our miss and now.
		if entry, found := g.cacheGet(ctx, key); found {
			return fetchResult{
				data: entry.Data,
				attribution: contracts.Attribution{
					Provider:  entry.Provider,
					FetchedAt: entry.FetchedAt,
					Cached:    true,
				},
			}, nil
		}

		data, provider, err := load()
		if err != nil {
			return fetchResult{}, err
		}

		fetchedAt := time.Now().UTC()
		g.cacheSet(ctx, &contracts.CacheEntry{
			Key:       key,
			Provider:  provider,
			Ticker:    ticker,
			Data:      data,
			FetchedAt: fetchedAt,
			ExpiresAt: fetchedAt.Add(ttl),
		})

		return fetchResult{
			data: data,
			attribution: contracts.Attribution{
				Provider:  provider,
				FetchedAt: fetchedAt,
				Cached:    false,
			},
		}, nil
	})
	if err != nil {
		return fetchResult{}, err
	}
	return v.(fetchResult), nil
}

// loadPriceHistory tries the primary market provider, then the mock.
func (g *Gateway) loadPriceHistory(ctx context.Context, ticker string, days int) (*contracts.PriceSeries, string, error) {
	if g.market != nil {
		series, err := g.market.PriceHistory(ctx, ticker, days)
		if err == nil {
			return series, g.market.Name(), nil
		}
		g.logger.WithError(err).WithFields(map[string]interface{}{
			"ticker":   ticker,
			"provider": g.market.Name(),
		}).Warn("Market provider failed, falling back to mock data")
	}

	series, err := g.fallbackMarket.PriceHistory(ctx, ticker, days)
	if err != nil {
		return nil, "", err
	}
	return series, g.fallbackMarket.Name(), nil
}

// loadFundamentals tries the primary fundamentals provider, then the mock.
func (g *Gateway) loadFundamentals(ctx context.Context, ticker string) (contracts.FundamentalMetrics, string, error) {
	if g.fundamentals != nil {
		metrics, err := g.fundamentals.Fundamentals(ctx, ticker)
		if err == nil {
			return metrics, g.fundamentals.Name(), nil
		}
		g.logger.WithError(err).WithFields(map[string]interface{}{
			"ticker":   ticker,
			"provider": g.fundamentals.Name(),
		}).Warn("Fundamentals provider failed, falling back to mock data")
	}

	metrics, err := g.fallbackFundamentals.Fundamentals(ctx, ticker)
	if err != nil {
		return contracts.FundamentalMetrics{}, "", err
	}
	return metrics, g.fallbackFundamentals.Name(), nil
}

// loadNews tries the primary news provider, then the mock.
func (g *Gateway) loadNews(ctx context.Context, ticker string, maxArticles int) ([]contracts.NewsArticle, string, error) {
	if g.news != nil {
		articles, err := g.news.News(ctx, ticker, maxArticles)
		if err == nil {
			return articles, g.news.Name(), nil
		}
		g.logger.WithError(err).WithFields(map[string]interface{}{
			"ticker":   ticker,
			"provider": g.news.Name(),
		}).Warn("News provider failed, falling back to mock data")
	}

	articles, err := g.fallbackNews.News(ctx, ticker, maxArticles)
	if err != nil {
		return nil, "", err
	}
	return articles, g.fallbackNews.Name(), nil
}

// cacheGet treats any cache failure as a miss.
func (g *Gateway) cacheGet(ctx context.Context, key string) (*contracts.CacheEntry, bool) {
	entry, found, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.WithError(err).WithField("key", key).Warn("Cache read failed, treating as miss")
		return nil, false
	}
	return entry, found
}

// cacheSet skips the write-through on failure.
func (g *Gateway) cacheSet(ctx context.Context, entry *contracts.CacheEntry) {
	if err := g.cache.Set(ctx, entry); err != nil {
		g.logger.WithError(err).WithField("key", entry.Key).Warn("Cache write failed, skipping write-through")
	}
}
