package mock

import (
	"context"

	"github.com/alphalens/backend/internal/contracts"
)

// FundamentalsProviderName identifies the mock fundamentals source.
const FundamentalsProviderName = "mock_fundamentals"

// Curated metrics for well-known tickers; unknown tickers get
// hash-derived but deterministic values.
var mockFundamentals = map[string]contracts.FundamentalMetrics{
	"AAPL":  fixture(28.5, 0.08, 0.25, 1.8, 2_900_000_000_000),
	"MSFT":  fixture(35.2, 0.12, 0.36, 0.4, 2_800_000_000_000),
	"GOOGL": fixture(24.8, 0.10, 0.22, 0.1, 1_800_000_000_000),
	"GOOG":  fixture(24.8, 0.10, 0.22, 0.1, 1_800_000_000_000),
	"AMZN":  fixture(62.5, 0.11, 0.06, 0.8, 1_850_000_000_000),
	"NVDA":  fixture(65.0, 0.55, 0.45, 0.4, 1_200_000_000_000),
	"META":  fixture(22.5, 0.15, 0.28, 0.2, 1_000_000_000_000),
	"TSLA":  fixture(72.0, 0.18, 0.11, 0.1, 790_000_000_000),
	"JPM":   fixture(11.5, 0.06, 0.32, 1.2, 500_000_000_000),
	"V":     fixture(29.0, 0.09, 0.52, 0.5, 550_000_000_000),
	"JNJ":   fixture(15.2, 0.04, 0.18, 0.4, 385_000_000_000),
}

// Fundamentals is a deterministic FundamentalsProvider.
type Fundamentals struct{}

// NewFundamentals creates the mock fundamentals provider.
func NewFundamentals() *Fundamentals {
	return &Fundamentals{}
}

// Name returns the provider identity used in attribution.
func (f *Fundamentals) Name() string {
	return FundamentalsProviderName
}

// Fundamentals returns curated or hash-derived metrics for the ticker.
func (f *Fundamentals) Fundamentals(ctx context.Context, ticker string) (contracts.FundamentalMetrics, error) {
	if m, ok := mockFundamentals[ticker]; ok {
		return m, nil
	}

	hash := tickerHash(ticker)
	return fixture(
		15.0+float64(hash%30),
		0.05+float64(hash%20)*0.01,
		0.10+float64(hash%25)*0.01,
		0.3+float64(hash%15)*0.1,
		50_000_000_000+float64(hash%100)*10_000_000_000,
	), nil
}

func fixture(pe, growth, margin, debt, marketCap float64) contracts.FundamentalMetrics {
	return contracts.FundamentalMetrics{
		PERatio:       &pe,
		RevenueGrowth: &growth,
		ProfitMargin:  &margin,
		DebtToEquity:  &debt,
		MarketCap:     &marketCap,
	}
}
