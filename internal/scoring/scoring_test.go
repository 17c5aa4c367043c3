package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalens/backend/internal/contracts"
)

func ptr(v float64) *float64 { return &v }

func TestTechnicalScore(t *testing.T) {
	t.Run("best case hits 100", func(t *testing.T) {
		ind := contracts.TechnicalIndicators{
			RSI:           25,  // oversold: 25
			MACDHistogram: 1.0, // strong bullish: 25
			CurrentPrice:  110,
			SMA50:         105, // above both + golden cross: 30
			SMA200:        100,
			VolumeTrend:   1.5, // strong volume: 20
		}
		assert.Equal(t, 100.0, TechnicalScore(ind))
	})

	t.Run("worst case hits 20", func(t *testing.T) {
		ind := contracts.TechnicalIndicators{
			RSI:           75,   // overbought: 5
			MACDHistogram: -1.0, // strong bearish: 5
			CurrentPrice:  90,
			SMA50:         100, // below both, no cross: 5
			SMA200:        105,
			VolumeTrend:   0.5, // decreasing: 5
		}
		assert.Equal(t, 20.0, TechnicalScore(ind))
	})

	t.Run("golden cross bonus is capped", func(t *testing.T) {
		ind := contracts.TechnicalIndicators{
			RSI:           50,
			MACDHistogram: 0,
			CurrentPrice:  110,
			SMA50:         105,
			SMA200:        100,
			VolumeTrend:   1.0,
		}
		// 15 (neutral RSI) + 10 (weak bearish) + 30 (capped SMA) + 10 (stable)
		assert.Equal(t, 65.0, TechnicalScore(ind))
	})
}

func TestFundamentalScore(t *testing.T) {
	t.Run("strong metrics score 100", func(t *testing.T) {
		m := contracts.FundamentalMetrics{
			PERatio:       ptr(10),   // 25
			RevenueGrowth: ptr(0.25), // 25
			ProfitMargin:  ptr(0.30), // 25
			DebtToEquity:  ptr(0.2),  // 25
		}
		assert.Equal(t, 100.0, FundamentalScore(m))
	})

	t.Run("missing fields are renormalized", func(t *testing.T) {
		m := contracts.FundamentalMetrics{
			PERatio:      ptr(10),   // 25
			ProfitMargin: ptr(0.30), // 25
		}
		// (25+25) * 4/2 = 100
		assert.Equal(t, 100.0, FundamentalScore(m))
	})

	t.Run("all fields missing scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, FundamentalScore(contracts.FundamentalMetrics{}))
	})

	t.Run("negative earnings penalized", func(t *testing.T) {
		m := contracts.FundamentalMetrics{PERatio: ptr(-5)}
		// 5 * 4 = 20
		assert.Equal(t, 20.0, FundamentalScore(m))
	})
}

func TestSentimentScore(t *testing.T) {
	t.Run("no articles is neutral", func(t *testing.T) {
		assert.Equal(t, 50.0, SentimentScore(contracts.SentimentData{}))
	})

	t.Run("full confidence with enough articles", func(t *testing.T) {
		s := contracts.SentimentData{Score: 1.0, ArticleCount: 20}
		assert.Equal(t, 100.0, SentimentScore(s))
	})

	t.Run("low volume pulls toward neutral", func(t *testing.T) {
		s := contracts.SentimentData{Score: 1.0, ArticleCount: 3}
		// 50 + (100-50)*0.6 = 80
		assert.Equal(t, 80.0, SentimentScore(s))
	})

	t.Run("negative sentiment below neutral", func(t *testing.T) {
		s := contracts.SentimentData{Score: -1.0, ArticleCount: 20}
		assert.Equal(t, 0.0, SentimentScore(s))
	})
}

func TestCompositeScore(t *testing.T) {
	t.Run("weights", func(t *testing.T) {
		b := contracts.ScoreBreakdown{Technical: 100, Fundamental: 0, Sentiment: 0}
		assert.Equal(t, 40.0, CompositeScore(b))

		b = contracts.ScoreBreakdown{Technical: 0, Fundamental: 100, Sentiment: 100}
		assert.Equal(t, 60.0, CompositeScore(b))
	})

	t.Run("bounded for random sub-scores", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for i := 0; i < 1000; i++ {
			b := contracts.ScoreBreakdown{
				Technical:   rng.Float64() * 100,
				Fundamental: rng.Float64() * 100,
				Sentiment:   rng.Float64() * 100,
			}
			score := CompositeScore(b)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		}
	})
}

func TestRankAndAllocate(t *testing.T) {
	t.Run("ranks descending and sums to 100", func(t *testing.T) {
		inputs := []TickerBreakdown{
			{Ticker: "AAA", Breakdown: contracts.ScoreBreakdown{Technical: 50, Fundamental: 50, Sentiment: 50}},
			{Ticker: "BBB", Breakdown: contracts.ScoreBreakdown{Technical: 90, Fundamental: 90, Sentiment: 90}},
			{Ticker: "CCC", Breakdown: contracts.ScoreBreakdown{Technical: 20, Fundamental: 20, Sentiment: 20}},
		}

		scores := RankAndAllocate(inputs)
		require.Len(t, scores, 3)

		assert.Equal(t, "BBB", scores[0].Ticker)
		assert.Equal(t, 1, scores[0].Rank)
		assert.Equal(t, "AAA", scores[1].Ticker)
		assert.Equal(t, "CCC", scores[2].Ticker)
		assert.Equal(t, 3, scores[2].Rank)

		assert.True(t, AllocationsSumTo100(scores))
		assert.InDelta(t, 100.0, sumAllocations(scores), 1e-9, "residual correction must make the sum exact")
	})

	t.Run("ties break alphabetically", func(t *testing.T) {
		same := contracts.ScoreBreakdown{Technical: 60, Fundamental: 60, Sentiment: 60}
		inputs := []TickerBreakdown{
			{Ticker: "ZZZ", Breakdown: same},
			{Ticker: "AAA", Breakdown: same},
			{Ticker: "MMM", Breakdown: same},
		}

		scores := RankAndAllocate(inputs)
		assert.Equal(t, []string{"AAA", "MMM", "ZZZ"}, []string{scores[0].Ticker, scores[1].Ticker, scores[2].Ticker})
	})

	t.Run("all-zero scores split equally", func(t *testing.T) {
		zero := contracts.ScoreBreakdown{}
		inputs := []TickerBreakdown{
			{Ticker: "AAA", Breakdown: zero},
			{Ticker: "BBB", Breakdown: zero},
			{Ticker: "CCC", Breakdown: zero},
		}

		scores := RankAndAllocate(inputs)
		assert.InDelta(t, 100.0, sumAllocations(scores), 1e-9)
		assert.InDelta(t, scores[1].AllocationPct, scores[2].AllocationPct, 1e-9)
	})

	t.Run("deterministic", func(t *testing.T) {
		inputs := []TickerBreakdown{
			{Ticker: "AAPL", Breakdown: contracts.ScoreBreakdown{Technical: 71.5, Fundamental: 62.25, Sentiment: 55}},
			{Ticker: "MSFT", Breakdown: contracts.ScoreBreakdown{Technical: 66, Fundamental: 80, Sentiment: 61.4}},
		}

		first := RankAndAllocate(inputs)
		second := RankAndAllocate(inputs)
		assert.Equal(t, first, second)
	})
}

func sumAllocations(scores []contracts.StockScore) float64 {
	var sum float64
	for _, s := range scores {
		sum += s.AllocationPct
	}
	return sum
}
