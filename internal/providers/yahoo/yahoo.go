// Package yahoo scrapes fundamental metrics from Yahoo Finance quote
// pages. It is the alternate FundamentalsProvider when no FMP key is
// available.
package yahoo

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/pkg/httputil"
	"github.com/alphalens/backend/pkg/logger"
)

// ProviderName identifies Yahoo in attributions and cache keys.
const ProviderName = "yahoo"

// Provider scrapes key statistics from Yahoo Finance.
type Provider struct {
	client  *httputil.Client
	logger  *logger.Logger
	baseURL string
}

// New creates a Yahoo fundamentals provider.
func New(client *httputil.Client, log *logger.Logger, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = "https://finance.yahoo.com"
	}
	return &Provider{
		client:  client,
		logger:  log,
		baseURL: baseURL,
	}
}

// Name returns the provider identity used in attribution.
func (p *Provider) Name() string {
	return ProviderName
}

// Fundamentals scrapes the key-statistics page. Metrics missing from
// the page stay nil; scoring renormalizes over whatever is present.
func (p *Provider) Fundamentals(ctx context.Context, ticker string) (contracts.FundamentalMetrics, error) {
	var metrics contracts.FundamentalMetrics

	url := fmt.Sprintf("%s/quote/%s/key-statistics", p.baseURL, ticker)
	headers := map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	}

	resp, err := p.client.Get(ctx, url, headers)
	if err != nil {
		return metrics, contracts.NewProviderError(ProviderName, ticker, err)
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return metrics, contracts.NewProviderError(ProviderName, ticker, fmt.Errorf("read response body failed: %w", err))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return metrics, contracts.NewProviderError(ProviderName, ticker, fmt.Errorf("parse HTML failed: %w", err))
	}

	values := scrapeStatRows(doc)

	metrics.PERatio = values["Trailing P/E"]
	metrics.DebtToEquity = scaleDown(values["Total Debt/Equity (mrq)"], 100)
	metrics.ProfitMargin = values["Profit Margin"]
	metrics.RevenueGrowth = values["Quarterly Revenue Growth (yoy)"]
	metrics.MarketCap = values["Market Cap"]

	if metrics.PERatio == nil && metrics.ProfitMargin == nil &&
		metrics.RevenueGrowth == nil && metrics.DebtToEquity == nil {
		return metrics, contracts.NewProviderError(ProviderName, ticker, fmt.Errorf("no metrics found on page"))
	}

	p.logger.WithField("ticker", ticker).Debug("Scraped fundamentals from Yahoo")
	return metrics, nil
}

// scrapeStatRows collects label/value pairs from the statistics tables.
func scrapeStatRows(doc *goquery.Document) map[string]*float64 {
	values := make(map[string]*float64)

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := strings.TrimSpace(cells.Eq(0).Text())
		if label == "" {
			return
		}

		if v, ok := parseStatValue(cells.Eq(1).Text()); ok {
			values[label] = &v
		}
	})

	return values
}

// parseStatValue parses Yahoo's formatted numbers: percentages,
// thousands separators and T/B/M/k magnitude suffixes.
func parseStatValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "N/A" || s == "--" {
		return 0, false
	}

	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		multiplier = 1e12
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "B"):
		multiplier = 1e9
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		multiplier = 1e6
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "k"):
		multiplier = 1e3
		s = strings.TrimSuffix(s, "k")
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	n *= multiplier
	if percent {
		n /= 100
	}
	return n, true
}

// scaleDown divides a scraped value; Yahoo reports debt/equity as a
// percentage figure.
func scaleDown(v *float64, by float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v / by
	return &scaled
}
