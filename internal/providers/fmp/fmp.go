// Package fmp adapts the Financial Modeling Prep API to the
// FundamentalsProvider interface.
package fmp

import (
	"context"
	"fmt"

	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/pkg/httputil"
	"github.com/alphalens/backend/pkg/logger"
)

// ProviderName identifies FMP in attributions and cache keys.
const ProviderName = "fmp"

// Provider fetches fundamental metrics from Financial Modeling Prep.
type Provider struct {
	client  *httputil.Client
	logger  *logger.Logger
	apiKey  string
	baseURL string
}

// New creates an FMP fundamentals provider.
func New(client *httputil.Client, log *logger.Logger, apiKey, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = "https://financialmodelingprep.com/api/v3"
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

type profileEntry struct {
	Symbol    string  `json:"symbol"`
	MarketCap float64 `json:"mktCap"`
}

type ratiosEntry struct {
	PERatioTTM         *float64 `json:"peRatioTTM"`
	NetProfitMarginTTM *float64 `json:"netProfitMarginTTM"`
	DebtEquityRatioTTM *float64 `json:"debtEquityRatioTTM"`
}

type keyMetricsEntry struct {
	RevenueGrowthTTM *float64 `json:"revenueGrowthTTM"`
}

// Fundamentals assembles metrics from the profile and TTM ratio
// endpoints. Metrics an endpoint does not carry stay nil; scoring
// renormalizes over whatever is present.
func (p *Provider) Fundamentals(ctx context.Context, ticker string) (contracts.FundamentalMetrics, error) {
	var metrics contracts.FundamentalMetrics

	if p.apiKey == "" {
		return metrics, contracts.NewProviderError(ProviderName, ticker, fmt.Errorf("api key not configured"))
	}

	var ratios []ratiosEntry
	ratiosURL := fmt.Sprintf("%s/ratios-ttm/%s?apikey=%s", p.baseURL, ticker, p.apiKey)
	if err := p.client.GetJSON(ctx, ratiosURL, nil, &ratios); err != nil {
		return metrics, contracts.NewProviderError(ProviderName, ticker, err)
	}
	if len(ratios) == 0 {
		return metrics, contracts.NewProviderError(ProviderName, ticker, fmt.Errorf("no ratio data returned"))
	}

	metrics.PERatio = ratios[0].PERatioTTM
	metrics.ProfitMargin = ratios[0].NetProfitMarginTTM
	metrics.DebtToEquity = ratios[0].DebtEquityRatioTTM

	// Profile and key-metrics failures are tolerable; partial metrics
	// still score.
	var profiles []profileEntry
	profileURL := fmt.Sprintf("%s/profile/%s?apikey=%s", p.baseURL, ticker, p.apiKey)
	if err := p.client.GetJSON(ctx, profileURL, nil, &profiles); err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("FMP profile fetch failed")
	} else if len(profiles) > 0 && profiles[0].MarketCap > 0 {
		mcap := profiles[0].MarketCap
		metrics.MarketCap = &mcap
	}

	var keyMetrics []keyMetricsEntry
	kmURL := fmt.Sprintf("%s/key-metrics-ttm/%s?apikey=%s", p.baseURL, ticker, p.apiKey)
	if err := p.client.GetJSON(ctx, kmURL, nil, &keyMetrics); err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("FMP key metrics fetch failed")
	} else if len(keyMetrics) > 0 {
		metrics.RevenueGrowth = keyMetrics[0].RevenueGrowthTTM
	}

	p.logger.WithField("ticker", ticker).Debug("Fetched fundamentals from FMP")
	return metrics, nil
}
