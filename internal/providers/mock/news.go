package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alphalens/backend/internal/contracts"
)

// NewsProviderName identifies the mock news source.
const NewsProviderName = "mock_news"

var positiveTemplates = []string{
	"%s reports record quarterly earnings, beating analyst expectations",
	"%s announces major partnership with industry leader",
	"%s stock upgraded by multiple analysts to 'Buy'",
	"%s unveils innovative new product line",
	"%s expands into emerging markets with strong growth potential",
	"Institutional investors increase %s holdings significantly",
}

var negativeTemplates = []string{
	"%s misses earnings estimates, stock under pressure",
	"%s faces regulatory investigation, shares decline",
	"%s announces layoffs amid cost-cutting measures",
	"%s loses major contract to competitor",
	"Analysts downgrade %s citing growth concerns",
	"%s recalls products due to safety issues",
}

var neutralTemplates = []string{
	"%s to report earnings next week, analysts mixed",
	"%s CEO speaks at industry conference",
	"%s announces board member retirement",
	"%s maintains guidance for fiscal year",
	"%s completes routine acquisition",
	"Market analysts provide mixed outlook for %s",
}

var newsSources = []string{
	"Reuters",
	"Bloomberg",
	"CNBC",
	"Wall Street Journal",
	"Financial Times",
	"MarketWatch",
}

// Per-ticker sentiment bias: fraction of coverage leaning positive.
var tickerSentimentBias = map[string]float64{
	"AAPL":  0.6,
	"MSFT":  0.7,
	"GOOGL": 0.5,
	"AMZN":  0.55,
	"NVDA":  0.8,
	"META":  0.4,
	"TSLA":  0.45,
	"JPM":   0.5,
	"V":     0.6,
	"JNJ":   0.55,
}

// Fixed publication anchor for determinism.
var mockNewsBaseDate = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

// News is a deterministic NewsProvider generating templated articles
// with a per-ticker sentiment distribution.
type News struct{}

// NewNews creates the mock news provider.
func NewNews() *News {
	return &News{}
}

// Name returns the provider identity used in attribution.
func (n *News) Name() string {
	return NewsProviderName
}

// News returns up to maxArticles templated articles for the ticker.
func (n *News) News(ctx context.Context, ticker string, maxArticles int) ([]contracts.NewsArticle, error) {
	bias, ok := tickerSentimentBias[ticker]
	if !ok {
		bias = 0.5 + float64(tickerHash(ticker)%20-10)*0.02
	}

	positiveCount := int(float64(maxArticles) * bias * 0.6)
	negativeCount := int(float64(maxArticles) * (1 - bias) * 0.6)
	neutralCount := maxArticles - positiveCount - negativeCount

	articles := make([]contracts.NewsArticle, 0, maxArticles)
	index := 0

	for i := 0; i < positiveCount; i++ {
		articles = append(articles, generateArticle(ticker, positiveTemplates[i%len(positiveTemplates)], "positive", index))
		index++
	}
	for i := 0; i < negativeCount; i++ {
		articles = append(articles, generateArticle(ticker, negativeTemplates[i%len(negativeTemplates)], "negative", index))
		index++
	}
	for i := 0; i < neutralCount; i++ {
		articles = append(articles, generateArticle(ticker, neutralTemplates[i%len(neutralTemplates)], "neutral", index))
		index++
	}

	// Most recent first.
	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt > articles[j].PublishedAt
	})

	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}
	return articles, nil
}

func generateArticle(ticker, template, sentiment string, index int) contracts.NewsArticle {
	published := mockNewsBaseDate.
		Add(-time.Duration(index) * 24 * time.Hour).
		Add(-time.Duration(index*3) * time.Hour)

	return contracts.NewsArticle{
		Title:       fmt.Sprintf(template, ticker),
		Source:      newsSources[index%len(newsSources)],
		PublishedAt: published.Format(time.RFC3339),
		URL:         fmt.Sprintf("https://example.com/news/%s-%d", strings.ToLower(ticker), index),
		Summary:     fmt.Sprintf("Mock summary for %s %s news article #%d", ticker, sentiment, index),
	}
}
