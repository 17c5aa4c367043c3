// Package mock provides deterministic in-process data providers. They
// back local development, tests, and the gateway's fallback path when a
// real provider fails: a run degraded to mock data still succeeds, with
// the mock source named in its attribution.
package mock

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/alphalens/backend/internal/contracts"
)

// MarketProviderName identifies the mock market data source in
// attributions and cache keys.
const MarketProviderName = "mock_market"

// Base prices for well-known tickers, pinned to a fixed date so the
// generated series are stable across runs.
var mockBasePrices = map[string]float64{
	"AAPL":  185.0,
	"MSFT":  378.0,
	"GOOGL": 141.0,
	"AMZN":  178.0,
	"NVDA":  495.0,
	"META":  390.0,
	"TSLA":  248.0,
	"JPM":   172.0,
	"V":     275.0,
	"JNJ":   160.0,
}

const defaultBasePrice = 100.0

// Reference end date for generated series. Fixed for determinism.
var mockReferenceDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// MarketData is a deterministic MarketDataProvider: synthetic sine-wave
// OHLCV series whose volatility and trend vary per ticker.
type MarketData struct {
	mu   sync.Mutex
	memo map[string]*contracts.PriceSeries
}

// NewMarketData creates the mock market data provider.
func NewMarketData() *MarketData {
	return &MarketData{memo: make(map[string]*contracts.PriceSeries)}
}

// Name returns the provider identity used in attribution.
func (m *MarketData) Name() string {
	return MarketProviderName
}

// PriceHistory returns a synthetic price series for the ticker.
func (m *MarketData) PriceHistory(ctx context.Context, ticker string, days int) (*contracts.PriceSeries, error) {
	memoKey := fmt.Sprintf("%s_%d", ticker, days)

	m.mu.Lock()
	defer m.mu.Unlock()

	if series, ok := m.memo[memoKey]; ok {
		return series, nil
	}

	basePrice, ok := mockBasePrices[ticker]
	if !ok {
		basePrice = defaultBasePrice
	}

	// Vary volatility and trend by ticker for diversity.
	hash := tickerHash(ticker)
	volatility := 0.015 + float64(hash%10)*0.002
	trend := 0.0001
	if hash%2 != 0 {
		trend = -0.00005
	}

	series := generateSeries(ticker, basePrice, days, volatility, trend)
	m.memo[memoKey] = series
	return series, nil
}

// generateSeries builds a sine-wave OHLCV series of the given length.
func generateSeries(ticker string, basePrice float64, days int, volatility, trend float64) *contracts.PriceSeries {
	series := &contracts.PriceSeries{
		Ticker:  ticker,
		Dates:   generateDates(days),
		Opens:   make([]float64, 0, days),
		Highs:   make([]float64, 0, days),
		Lows:    make([]float64, 0, days),
		Closes:  make([]float64, 0, days),
		Volumes: make([]int64, 0, days),
	}

	price := basePrice
	const baseVolume = 10_000_000

	for i := 0; i < days; i++ {
		dayFactor := math.Sin(float64(i)*0.1)*volatility + trend
		dailyChange := 1 + dayFactor

		open := price
		high := open * (1 + math.Abs(dayFactor)*0.5)
		low := open * (1 - math.Abs(dayFactor)*0.5)
		close := price * dailyChange

		series.Opens = append(series.Opens, round2(open))
		series.Highs = append(series.Highs, round2(high))
		series.Lows = append(series.Lows, round2(low))
		series.Closes = append(series.Closes, round2(close))
		series.Volumes = append(series.Volumes, int64(baseVolume*(1+0.3*math.Sin(float64(i)*0.2))))

		price = close
	}

	return series
}

// generateDates lists trading-day strings going back from the fixed
// reference date, skipping weekends.
func generateDates(days int) []string {
	dates := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := mockReferenceDate.AddDate(0, 0, -i)
		for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			date = date.AddDate(0, 0, -1)
		}
		dates = append(dates, date.Format("2006-01-02"))
	}
	return dates
}

// tickerHash is a deterministic per-ticker seed.
func tickerHash(ticker string) int {
	sum := 0
	for _, c := range ticker {
		sum += int(c)
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
