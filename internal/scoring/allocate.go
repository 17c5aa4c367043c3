package scoring

import (
	"math"
	"sort"

	"github.com/alphalens/backend/internal/contracts"
)

// TickerBreakdown pairs a ticker with its sub-scores for ranking.
type TickerBreakdown struct {
	Ticker    string
	Breakdown contracts.ScoreBreakdown
}

// RankAndAllocate computes composite scores, ranks tickers (1 = best,
// ties broken alphabetically for determinism) and assigns allocation
// percentages proportional to score. When every score is zero the
// allocation is an equal split; the sum is always exactly 100.00 after
// a rounding-residual correction applied to the top-ranked ticker.
func RankAndAllocate(inputs []TickerBreakdown) []contracts.StockScore {
	scores := make([]contracts.StockScore, 0, len(inputs))
	for _, in := range inputs {
		scores = append(scores, contracts.StockScore{
			Ticker:         in.Ticker,
			CompositeScore: CompositeScore(in.Breakdown),
			Breakdown:      in.Breakdown,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].CompositeScore != scores[j].CompositeScore {
			return scores[i].CompositeScore > scores[j].CompositeScore
		}
		return scores[i].Ticker < scores[j].Ticker
	})

	var total float64
	for _, s := range scores {
		total += s.CompositeScore
	}

	var allocated float64
	for i := range scores {
		scores[i].Rank = i + 1

		var pct float64
		if total > 0 {
			pct = scores[i].CompositeScore / total * 100
		} else {
			// All scores zero: never divide by zero, split equally.
			pct = 100 / float64(len(scores))
		}

		scores[i].AllocationPct = round2(pct)
		allocated += scores[i].AllocationPct
	}

	// Assign the rounding residual to the top pick so the displayed
	// percentages always sum to exactly 100.
	if len(scores) > 0 {
		residual := round2(100 - allocated)
		if residual != 0 {
			scores[0].AllocationPct = round2(scores[0].AllocationPct + residual)
		}
	}

	return scores
}

// allocationTolerance is the accepted drift before residual correction.
const allocationTolerance = 0.1

// AllocationsSumTo100 verifies the allocation invariant within tolerance.
func AllocationsSumTo100(scores []contracts.StockScore) bool {
	if len(scores) == 0 {
		return true
	}
	var sum float64
	for _, s := range scores {
		sum += s.AllocationPct
	}
	return math.Abs(sum-100) <= allocationTolerance
}
