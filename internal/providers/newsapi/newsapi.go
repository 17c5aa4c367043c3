// Package newsapi adapts NewsAPI.org to the NewsProvider interface.
package newsapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/pkg/httputil"
	"github.com/alphalens/backend/pkg/logger"
)

// ProviderName identifies NewsAPI in attributions and cache keys.
const ProviderName = "newsapi"

// lookbackDays bounds how far back article search goes.
const lookbackDays = 7

// Provider fetches recent articles from NewsAPI's /v2/everything.
type Provider struct {
	client  *httputil.Client
	logger  *logger.Logger
	apiKey  string
	baseURL string
}

// New creates a NewsAPI news provider.
func New(client *httputil.Client, log *logger.Logger, apiKey, baseURL string) *Provider {
	if baseURL == "" {
		baseURL = "https://newsapi.org/v2"
	}
	return &Provider{
		client:  client,
		logger:  log,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Name returns the provider identity used in attribution.
func (p *Provider) Name() string {
	return ProviderName
}

type everythingResponse struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []article `json:"articles"`
}

type article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
}

// News fetches up to maxArticles recent articles mentioning the ticker.
func (p *Provider) News(ctx context.Context, ticker string, maxArticles int) ([]contracts.NewsArticle, error) {
	if p.apiKey == "" {
		return nil, contracts.NewProviderError(ProviderName, ticker, fmt.Errorf("api key not configured"))
	}

	from := time.Now().UTC().AddDate(0, 0, -lookbackDays).Format("2006-01-02")

	query := url.Values{}
	query.Set("q", fmt.Sprintf("%s stock", ticker))
	query.Set("from", from)
	query.Set("sortBy", "publishedAt")
	query.Set("language", "en")
	query.Set("pageSize", fmt.Sprintf("%d", maxArticles))

	reqURL := fmt.Sprintf("%s/everything?%s", p.baseURL, query.Encode())
	headers := map[string]string{"X-Api-Key": p.apiKey}

	var resp everythingResponse
	if err := p.client.GetJSON(ctx, reqURL, headers, &resp); err != nil {
		return nil, contracts.NewProviderError(ProviderName, ticker, err)
	}
	if resp.Status != "ok" {
		return nil, contracts.NewProviderError(ProviderName, ticker, fmt.Errorf("unexpected response status %q", resp.Status))
	}

	articles := make([]contracts.NewsArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" {
			continue
		}
		articles = append(articles, contracts.NewsArticle{
			Title:       a.Title,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			URL:         a.URL,
			Summary:     a.Description,
		})
		if len(articles) == maxArticles {
			break
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"ticker":   ticker,
		"articles": len(articles),
	}).Debug("Fetched news from NewsAPI")

	return articles, nil
}
