package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalens/backend/pkg/config"
	"github.com/alphalens/backend/pkg/httputil"
	"github.com/alphalens/backend/pkg/logger"
)

func TestParseStatValue(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"28.50", 28.50, true},
		{"1,234.5", 1234.5, true},
		{"25.00%", 0.25, true},
		{"2.9T", 2.9e12, true},
		{"385.2B", 385.2e9, true},
		{"51.3M", 51.3e6, true},
		{"N/A", 0, false},
		{"--", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}

	for _, tc := range cases {
		got, ok := parseStatValue(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, tc.want*1e-9, "input %q", tc.in)
		}
	}
}

const statsPage = `<html><body>
<table>
<tr><td>Market Cap</td><td>2.90T</td></tr>
<tr><td>Trailing P/E</td><td>28.50</td></tr>
</table>
<table>
<tr><td>Profit Margin</td><td>25.00%</td></tr>
<tr><td>Quarterly Revenue Growth (yoy)</td><td>8.10%</td></tr>
<tr><td>Total Debt/Equity (mrq)</td><td>176.35</td></tr>
</table>
</body></html>`

func TestFundamentals(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote/AAPL/key-statistics", r.URL.Path)
		fmt.Fprint(w, statsPage)
	}))
	defer server.Close()

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Timeout:           5 * time.Second,
			RetryBackoff:      time.Millisecond,
			ProviderRateLimit: 1000,
		},
	}
	client := httputil.New(cfg, logger.NewNop())
	p := New(client, logger.NewNop(), server.URL)

	metrics, err := p.Fundamentals(context.Background(), "AAPL")
	require.NoError(t, err)

	require.NotNil(t, metrics.PERatio)
	assert.InDelta(t, 28.5, *metrics.PERatio, 1e-9)

	require.NotNil(t, metrics.ProfitMargin)
	assert.InDelta(t, 0.25, *metrics.ProfitMargin, 1e-9)

	require.NotNil(t, metrics.RevenueGrowth)
	assert.InDelta(t, 0.081, *metrics.RevenueGrowth, 1e-9)

	require.NotNil(t, metrics.DebtToEquity)
	assert.InDelta(t, 1.7635, *metrics.DebtToEquity, 1e-9)

	require.NotNil(t, metrics.MarketCap)
	assert.InDelta(t, 2.9e12, *metrics.MarketCap, 1)
}

func TestFundamentalsEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer server.Close()

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Timeout:           5 * time.Second,
			RetryBackoff:      time.Millisecond,
			ProviderRateLimit: 1000,
		},
	}
	client := httputil.New(cfg, logger.NewNop())
	p := New(client, logger.NewNop(), server.URL)

	_, err := p.Fundamentals(context.Background(), "AAPL")
	assert.Error(t, err, "a page with no recognizable metrics is a provider failure")
}
