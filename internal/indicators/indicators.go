// Package indicators computes technical indicators from price history.
// Everything in this package is pure computation: no I/O, deterministic,
// bit-reproducible for a fixed input series.
package indicators

import (
	"math"

	"github.com/alphalens/backend/internal/contracts"
)

// Default indicator parameters.
const (
	RSIPeriod         = 14
	MACDFastPeriod    = 12
	MACDSlowPeriod    = 26
	MACDSignalPeriod  = 9
	SMAShortPeriod    = 50
	SMALongPeriod     = 200
	VolumeShortPeriod = 10
	VolumeLongPeriod  = 30
)

// SMA calculates the simple moving average of the trailing period.
// With fewer than period points, the average is taken over the
// available shorter window instead of failing; this degradation policy
// applies uniformly to every moving average in the engine.
func SMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if len(prices) < period {
		period = len(prices)
	}

	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// EMA calculates the exponential moving average, seeded with the SMA of
// the first period points. Returns (0, false) with insufficient history.
func EMA(prices []float64, period int) (float64, bool) {
	if len(prices) < period {
		return 0, false
	}

	multiplier := 2.0 / (float64(period) + 1.0)

	var sum float64
	for _, p := range prices[:period] {
		sum += p
	}
	ema := sum / float64(period)

	for _, p := range prices[period:] {
		ema = (p-ema)*multiplier + ema
	}

	return ema, true
}

// RSI calculates the Relative Strength Index over the trailing period.
// Policy for edge cases: fewer than period+1 points returns the neutral
// 50; zero average loss returns 100 when there were gains and 50 when
// the series was flat. The value is always within [0, 100].
func RSI(prices []float64, period int) float64 {
	if len(prices) < period+1 {
		return 50.0
	}

	changes := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		changes[i-1] = prices[i] - prices[i-1]
	}

	var gains, losses float64
	for _, change := range changes[len(changes)-period:] {
		if change > 0 {
			gains += change
		} else {
			losses += -change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		if avgGain > 0 {
			return 100.0
		}
		return 50.0
	}

	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))

	return round2(clamp(rsi, 0, 100))
}

// MACD calculates the MACD line, signal line and histogram using the
// given fast/slow/signal periods. With fewer than slow+signal points
// the indicator is degraded to zeros rather than failing; the histogram
// is always exactly line minus signal.
func MACD(prices []float64, fastPeriod, slowPeriod, signalPeriod int) (line, signal, histogram float64) {
	if len(prices) < slowPeriod+signalPeriod {
		return 0, 0, 0
	}

	fastEMA, okFast := EMA(prices, fastPeriod)
	slowEMA, okSlow := EMA(prices, slowPeriod)
	if !okFast || !okSlow {
		return 0, 0, 0
	}

	line = fastEMA - slowEMA

	// Signal line is the EMA of the MACD series, rebuilt over growing
	// prefixes of the price series.
	macdValues := make([]float64, 0, len(prices)-slowPeriod+1)
	for i := slowPeriod; i <= len(prices); i++ {
		fast, okF := EMA(prices[:i], fastPeriod)
		slow, okS := EMA(prices[:i], slowPeriod)
		if okF && okS {
			macdValues = append(macdValues, fast-slow)
		}
	}

	if len(macdValues) >= signalPeriod {
		if s, ok := EMA(macdValues, signalPeriod); ok {
			signal = s
		}
	}

	line = round4(line)
	signal = round4(signal)
	histogram = line - signal

	return line, signal, histogram
}

// VolumeTrend compares the recent average volume against a longer
// baseline. Values above 1 mean increasing volume. With fewer than
// longPeriod points the trend is the neutral 1.0.
func VolumeTrend(volumes []int64, shortPeriod, longPeriod int) float64 {
	if len(volumes) < longPeriod {
		return 1.0
	}

	var shortSum, longSum float64
	for _, v := range volumes[len(volumes)-shortPeriod:] {
		shortSum += float64(v)
	}
	for _, v := range volumes[len(volumes)-longPeriod:] {
		longSum += float64(v)
	}

	shortAvg := shortSum / float64(shortPeriod)
	longAvg := longSum / float64(longPeriod)

	if longAvg == 0 {
		return 1.0
	}

	return round3(shortAvg / longAvg)
}

// Compute derives all technical indicators from a price series.
func Compute(series *contracts.PriceSeries) contracts.TechnicalIndicators {
	closes := series.Closes
	volumes := series.Volumes

	line, signal, histogram := MACD(closes, MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)

	return contracts.TechnicalIndicators{
		RSI:           RSI(closes, RSIPeriod),
		MACD:          line,
		MACDSignal:    signal,
		MACDHistogram: histogram,
		SMA50:         round2(SMA(closes, SMAShortPeriod)),
		SMA200:        round2(SMA(closes, SMALongPeriod)),
		CurrentPrice:  round2(series.LatestClose()),
		VolumeTrend:   VolumeTrend(volumes, VolumeShortPeriod, VolumeLongPeriod),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
