package contracts

import "context"

// PriceSeries is a chronological OHLCV series for one ticker,
// oldest bar first.
type PriceSeries struct {
	Ticker  string    `json:"ticker"`
	Dates   []string  `json:"dates"`
	Opens   []float64 `json:"opens"`
	Highs   []float64 `json:"highs"`
	Lows    []float64 `json:"lows"`
	Closes  []float64 `json:"closes"`
	Volumes []int64   `json:"volumes"`
}

// Len returns the number of bars in the series.
func (p *PriceSeries) Len() int {
	return len(p.Dates)
}

// LatestClose returns the most recent closing price, 0 when empty.
func (p *PriceSeries) LatestClose() float64 {
	if len(p.Closes) == 0 {
		return 0
	}
	return p.Closes[len(p.Closes)-1]
}

// MarketDataProvider fetches historical price data.
type MarketDataProvider interface {
	Name() string
	PriceHistory(ctx context.Context, ticker string, days int) (*PriceSeries, error)
}

// FundamentalsProvider fetches fundamental financial metrics.
type FundamentalsProvider interface {
	Name() string
	Fundamentals(ctx context.Context, ticker string) (FundamentalMetrics, error)
}

// NewsProvider fetches recent news articles.
type NewsProvider interface {
	Name() string
	News(ctx context.Context, ticker string, maxArticles int) ([]NewsArticle, error)
}

// SentimentAnalyzer derives aggregate sentiment from news articles.
type SentimentAnalyzer interface {
	Name() string
	Analyze(ctx context.Context, ticker string, articles []NewsArticle) (SentimentData, error)
}
