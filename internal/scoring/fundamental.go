package scoring

import (
	"math"

	"github.com/alphalens/backend/internal/contracts"
)

// FundamentalScore maps fundamental metrics to a 0-100 score.
//
// Four components worth 25 points each: P/E (lower is better), revenue
// growth, profit margin, and debt/equity (lower is better). Missing
// fields are excluded and the remaining weights re-normalized, so a
// ticker with partial data is not unfairly penalized.
func FundamentalScore(m contracts.FundamentalMetrics) float64 {
	var score float64
	components := 0

	// P/E ratio component. Market average P/E is roughly 20-25.
	if m.PERatio != nil {
		switch pe := *m.PERatio; {
		case pe < 0:
			score += 5 // negative earnings
		case pe < 15:
			score += 25 // undervalued
		case pe < 25:
			score += 20 // fair value
		case pe < 40:
			score += 12 // growth premium
		default:
			score += 5 // overvalued
		}
		components++
	}

	// Revenue growth component.
	if m.RevenueGrowth != nil {
		switch g := *m.RevenueGrowth; {
		case g > 0.20:
			score += 25
		case g > 0.10:
			score += 20
		case g > 0.05:
			score += 15
		case g > 0:
			score += 10
		default:
			score += 5 // declining
		}
		components++
	}

	// Profit margin component.
	if m.ProfitMargin != nil {
		switch pm := *m.ProfitMargin; {
		case pm > 0.25:
			score += 25
		case pm > 0.15:
			score += 20
		case pm > 0.08:
			score += 15
		case pm > 0:
			score += 10
		default:
			score += 5 // unprofitable
		}
		components++
	}

	// Debt/equity component.
	if m.DebtToEquity != nil {
		switch de := *m.DebtToEquity; {
		case de < 0.3:
			score += 25
		case de < 0.6:
			score += 20
		case de < 1.0:
			score += 15
		case de < 2.0:
			score += 10
		default:
			score += 5 // very high debt
		}
		components++
	}

	// Re-normalize when some components were missing.
	if components > 0 && components < 4 {
		score = score * (4.0 / float64(components))
	}

	return round2(math.Min(100, score))
}
