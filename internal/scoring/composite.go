package scoring

import (
	"fmt"
	"math"

	"github.com/alphalens/backend/internal/contracts"
)

// Composite score weights. These exact values are a product contract:
// the ranking is meaningless if they drift.
const (
	TechnicalWeight   = 0.40
	FundamentalWeight = 0.30
	SentimentWeight   = 0.30
)

func init() {
	// Fail fast on a bad weight edit before any run can score.
	sum := TechnicalWeight + FundamentalWeight + SentimentWeight
	if math.Abs(sum-1.0) > 1e-9 {
		panic(fmt.Sprintf("scoring: composite weights must sum to 1.0, got %v", sum))
	}
}

// CompositeScore combines the three sub-scores into the final 0-100
// value: 40% technical + 30% fundamental + 30% sentiment.
func CompositeScore(b contracts.ScoreBreakdown) float64 {
	composite := b.Technical*TechnicalWeight +
		b.Fundamental*FundamentalWeight +
		b.Sentiment*SentimentWeight

	return round2(clamp(composite, 0, 100))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
