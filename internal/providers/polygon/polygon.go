// Package polygon adapts the Polygon.io aggregates API to the
// MarketDataProvider interface.
package polygon

import (
	"context"
	"fmt"
	"time"

	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/pkg/httputil"
	"github.com/alphalens/backend/pkg/logger"
)

// ProviderName identifies Polygon in attributions and cache keys.
const ProviderName = "polygon"

// Provider fetches daily OHLCV aggregates from Polygon.io.
type Provider struct {
	client  *httputil.Client
	logger  *logger.Logger
	apiKey  string
	baseURL string
}

// New creates a Polygon market data provider.
func New(client *httputil.Client, log *logger.Logger, apiKey, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = "https://api.polygon.io"
	}
	return &Provider{
		client:  client,
		logger:  log,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Name returns the provider identity used in attribution.
func (p *Provider) Name() string {
	return ProviderName
}

// aggsResponse mirrors the /v2/aggs response shape.
type aggsResponse struct {
	Ticker       string      `json:"ticker"`
	ResultsCount int         `json:"resultsCount"`
	Status       string      `json:"status"`
	Results      []aggResult `json:"results"`
}

type aggResult struct {
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
	Timestamp int64   `json:"t"` // ms since epoch
}

// PriceHistory fetches the last `days` calendar days of daily bars.
// Bars come back oldest first.
func (p *Provider) PriceHistory(ctx context.Context, ticker string, days int) (*contracts.PriceSeries, error) {
	if p.apiKey == "" {
		return nil, contracts.NewProviderError(ProviderName, ticker, fmt.Errorf("api key not configured"))
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	url := fmt.Sprintf(
		"%s/v2/aggs/ticker/%s/range/1/day/%s/%s?adjusted=true&sort=asc&apiKey=%s",
		p.baseURL, ticker, from.Format("2006-01-02"), to.Format("2006-01-02"), p.apiKey,
	)

	var resp aggsResponse
	if err := p.client.GetJSON(ctx, url, nil, &resp); err != nil {
		return nil, contracts.NewProviderError(ProviderName, ticker, err)
	}

	if len(resp.Results) == 0 {
		return nil, contracts.NewProviderError(ProviderName, ticker, fmt.Errorf("no price data returned"))
	}

	series := &contracts.PriceSeries{
		Ticker:  ticker,
		Dates:   make([]string, 0, len(resp.Results)),
		Opens:   make([]float64, 0, len(resp.Results)),
		Highs:   make([]float64, 0, len(resp.Results)),
		Lows:    make([]float64, 0, len(resp.Results)),
		Closes:  make([]float64, 0, len(resp.Results)),
		Volumes: make([]int64, 0, len(resp.Results)),
	}

	for _, bar := range resp.Results {
		date := time.UnixMilli(bar.Timestamp).UTC().Format("2006-01-02")
		series.Dates = append(series.Dates, date)
		series.Opens = append(series.Opens, bar.Open)
		series.Highs = append(series.Highs, bar.High)
		series.Lows = append(series.Lows, bar.Low)
		series.Closes = append(series.Closes, bar.Close)
		series.Volumes = append(series.Volumes, int64(bar.Volume))
	}

	p.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"bars":   series.Len(),
	}).Debug("Fetched price history from Polygon")

	return series, nil
}
