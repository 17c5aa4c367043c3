package mock

import (
	"context"
	"math"
	"strings"

	"github.com/alphalens/backend/internal/contracts"
)

// SentimentAnalyzerName identifies the keyword sentiment analyzer.
const SentimentAnalyzerName = "keyword_sentiment"

var positiveKeywords = []string{
	"record", "beat", "exceed", "growth", "upgrade", "buy",
	"innovative", "expand", "increase", "strong", "success",
	"partnership", "opportunity", "momentum", "outperform",
}

var negativeKeywords = []string{
	"miss", "decline", "downgrade", "sell", "concern", "pressure",
	"layoff", "investigation", "recall", "loss", "weak", "fail",
	"regulatory", "lawsuit", "cut", "warning", "underperform",
}

// Per-article classification thresholds.
const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2
)

// Sentiment is a keyword-matching SentimentAnalyzer. Deterministic and
// dependency-free, so it also serves as the fallback analyzer.
type Sentiment struct{}

// NewSentiment creates the keyword sentiment analyzer.
func NewSentiment() *Sentiment {
	return &Sentiment{}
}

// Name returns the analyzer identity used in attribution.
func (s *Sentiment) Name() string {
	return SentimentAnalyzerName
}

// Analyze aggregates per-article keyword scores into SentimentData.
func (s *Sentiment) Analyze(ctx context.Context, ticker string, articles []contracts.NewsArticle) (contracts.SentimentData, error) {
	if len(articles) == 0 {
		return contracts.SentimentData{}, nil
	}

	var positive, negative, neutral int
	var totalScore float64

	for _, article := range articles {
		score := articleScore(article)
		totalScore += score

		switch {
		case score > positiveThreshold:
			positive++
		case score < negativeThreshold:
			negative++
		default:
			neutral++
		}
	}

	avg := totalScore / float64(len(articles))

	return contracts.SentimentData{
		Score:         math.Round(avg*1000) / 1000,
		ArticleCount:  len(articles),
		PositiveCount: positive,
		NegativeCount: negative,
		NeutralCount:  neutral,
	}, nil
}

// articleScore rates one article in [-1, 1] from keyword hits in its
// title and summary.
func articleScore(article contracts.NewsArticle) float64 {
	text := strings.ToLower(article.Title + " " + article.Summary)

	var positive, negative int
	for _, word := range positiveKeywords {
		if strings.Contains(text, word) {
			positive++
		}
	}
	for _, word := range negativeKeywords {
		if strings.Contains(text, word) {
			negative++
		}
	}

	total := positive + negative
	if total == 0 {
		return 0
	}

	score := float64(positive-negative) / float64(total)
	return math.Max(-1, math.Min(1, score))
}
