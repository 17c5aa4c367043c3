package scoring

import "github.com/alphalens/backend/internal/contracts"

// SentimentScore maps news sentiment to a 0-100 score.
//
// The aggregate [-1, 1] score is rescaled so 0 centers at 50, then a
// volume-based confidence factor pulls low-article-count signals back
// toward neutral.
func SentimentScore(s contracts.SentimentData) float64 {
	// Base score: -1..1 mapped to 0..100.
	baseScore := (s.Score + 1) / 2 * 100

	// Volume confidence factor: more articles, more reliable signal.
	var confidence float64
	switch {
	case s.ArticleCount >= 15:
		confidence = 1.0
	case s.ArticleCount >= 10:
		confidence = 0.9
	case s.ArticleCount >= 5:
		confidence = 0.8
	default:
		confidence = 0.6
	}

	adjusted := 50 + (baseScore-50)*confidence

	return round2(clamp(adjusted, 0, 100))
}
