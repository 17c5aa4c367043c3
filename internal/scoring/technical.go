// Package scoring normalizes raw signals into 0-100 sub-scores and
// combines them into the composite score used for ranking and
// allocation. All functions are pure and deterministic.
package scoring

import (
	"math"

	"github.com/alphalens/backend/internal/contracts"
)

// TechnicalScore maps technical indicators to a 0-100 score.
//
// Components: RSI position (25 pts), MACD histogram momentum (25 pts),
// price vs SMA-50/200 including a golden-cross bonus (30 pts), and
// volume trend (20 pts).
func TechnicalScore(ind contracts.TechnicalIndicators) float64 {
	var score float64

	// RSI component (25 points max).
	// Oversold = bullish, overbought = bearish.
	switch {
	case ind.RSI < 30:
		score += 25 // oversold, strong buy signal
	case ind.RSI < 40:
		score += 20 // approaching oversold
	case ind.RSI > 70:
		score += 5 // overbought, sell signal
	case ind.RSI > 60:
		score += 10 // approaching overbought
	default:
		score += 15 // neutral zone
	}

	// MACD component (25 points max).
	switch {
	case ind.MACDHistogram > 0.5:
		score += 25 // strong bullish momentum
	case ind.MACDHistogram > 0:
		score += 20 // bullish momentum
	case ind.MACDHistogram > -0.5:
		score += 10 // weak bearish momentum
	default:
		score += 5 // strong bearish momentum
	}

	// Price vs SMA component (30 points max).
	aboveSMA50 := ind.CurrentPrice > ind.SMA50
	aboveSMA200 := ind.CurrentPrice > ind.SMA200

	var smaScore float64
	switch {
	case aboveSMA50 && aboveSMA200:
		smaScore = 30 // strong uptrend
	case aboveSMA200:
		smaScore = 20 // medium-term uptrend
	case aboveSMA50:
		smaScore = 15 // short-term recovery
	default:
		smaScore = 5 // downtrend
	}

	// Golden cross bonus, capped at the component maximum.
	if ind.SMA50 > ind.SMA200 {
		smaScore = math.Min(30, smaScore+5)
	}
	score += smaScore

	// Volume trend component (20 points max).
	switch {
	case ind.VolumeTrend > 1.2:
		score += 20 // strong increasing volume
	case ind.VolumeTrend > 1.0:
		score += 15 // increasing volume
	case ind.VolumeTrend > 0.8:
		score += 10 // stable volume
	default:
		score += 5 // decreasing volume
	}

	return round2(clamp(score, 0, 100))
}
