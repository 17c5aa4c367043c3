package contracts

import (
	"regexp"
	"strings"
	"time"
)

// Horizon is the requested investment time frame.
type Horizon string

const (
	HorizonOneWeek     Horizon = "1W"
	HorizonOneMonth    Horizon = "1M"
	HorizonThreeMonths Horizon = "3M"
	HorizonSixMonths   Horizon = "6M"
	HorizonOneYear     Horizon = "1Y"
)

// AllHorizons lists every supported horizon.
var AllHorizons = []Horizon{
	HorizonOneWeek,
	HorizonOneMonth,
	HorizonThreeMonths,
	HorizonSixMonths,
	HorizonOneYear,
}

// ParseHorizon validates and normalizes a horizon string.
func ParseHorizon(s string) (Horizon, error) {
	h := Horizon(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllHorizons {
		if h == known {
			return h, nil
		}
	}
	return "", NewValidationError("invalid horizon: %s (must be one of 1W, 1M, 3M, 6M, 1Y)", s)
}

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// NormalizeTickers upper-cases, trims, validates and de-duplicates ticker
// symbols, preserving the first-seen order.
func NormalizeTickers(tickers []string) ([]string, error) {
	if len(tickers) == 0 {
		return nil, NewValidationError("at least one ticker is required")
	}

	seen := make(map[string]bool, len(tickers))
	normalized := make([]string, 0, len(tickers))
	for _, t := range tickers {
		t = strings.ToUpper(strings.TrimSpace(t))
		if !tickerPattern.MatchString(t) {
			return nil, NewValidationError("invalid ticker symbol: %s (must be 1-5 uppercase letters)", t)
		}
		if !seen[t] {
			seen[t] = true
			normalized = append(normalized, t)
		}
	}

	return normalized, nil
}

// PlanLimits are the per-plan constraints enforced before a run executes.
type PlanLimits struct {
	MaxTickers      int       `json:"max_tickers"`
	AllowedHorizons []Horizon `json:"allowed_horizons"`
}

// AllowsHorizon reports whether the plan permits the given horizon.
func (p PlanLimits) AllowsHorizon(h Horizon) bool {
	for _, allowed := range p.AllowedHorizons {
		if allowed == h {
			return true
		}
	}
	return false
}

// TechnicalIndicators are the derived per-ticker technical features.
// Computed fresh each run; only the underlying price series is cached.
type TechnicalIndicators struct {
	RSI           float64 `json:"rsi"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`
	SMA50         float64 `json:"sma_50"`
	SMA200        float64 `json:"sma_200"`
	CurrentPrice  float64 `json:"current_price"`
	VolumeTrend   float64 `json:"volume_trend"`
}

// FundamentalMetrics are per-ticker financial ratios. Nil means the
// provider had no data for that field; the normalizer excludes nil
// fields instead of treating them as zero.
type FundamentalMetrics struct {
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	RevenueGrowth *float64 `json:"revenue_growth,omitempty"`
	ProfitMargin  *float64 `json:"profit_margin,omitempty"`
	DebtToEquity  *float64 `json:"debt_to_equity,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
}

// SentimentData aggregates news sentiment for one ticker.
type SentimentData struct {
	Score         float64 `json:"score"` // -1 to 1
	ArticleCount  int     `json:"article_count"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NeutralCount  int     `json:"neutral_count"`
}

// NewsArticle is one news item used as scoring evidence.
type NewsArticle struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	URL         string `json:"url"`
	Summary     string `json:"summary,omitempty"`
}

// ScoreBreakdown holds the three normalized sub-scores, each 0-100.
type ScoreBreakdown struct {
	Technical   float64 `json:"technical"`
	Fundamental float64 `json:"fundamental"`
	Sentiment   float64 `json:"sentiment"`
}

// StockScore is the scored, ranked and allocated result for one ticker.
type StockScore struct {
	Ticker         string         `json:"ticker"`
	CompositeScore float64        `json:"composite_score"`
	Breakdown      ScoreBreakdown `json:"breakdown"`
	Rank           int            `json:"rank"`
	AllocationPct  float64        `json:"allocation_pct"`
}

// Attribution records which concrete source served a data type and when.
type Attribution struct {
	Provider  string    `json:"provider"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// EvidenceAttribution holds the attribution for each of the three data types.
type EvidenceAttribution struct {
	Market       Attribution `json:"market"`
	Fundamentals Attribution `json:"fundamentals"`
	News         Attribution `json:"news"`
}

// EvidencePacket is the immutable raw/derived data bundle justifying a
// score. Assembled once per ticker per run, never recomputed.
type EvidencePacket struct {
	Ticker      string              `json:"ticker"`
	Technical   TechnicalIndicators `json:"technical"`
	Fundamental FundamentalMetrics  `json:"fundamental"`
	Sentiment   SentimentData       `json:"sentiment"`
	Articles    []NewsArticle       `json:"articles"`
	FetchedAt   time.Time           `json:"fetched_at"`
	Attribution EvidenceAttribution `json:"attribution"`
}

// RecommendationResult is the complete output of one run. Created once,
// atomically, by the orchestrator; immutable thereafter.
type RecommendationResult struct {
	RunID     string           `json:"run_id"`
	UserID    string           `json:"user_id"`
	Tickers   []string         `json:"tickers"`
	Horizon   Horizon          `json:"horizon"`
	Scores    []StockScore     `json:"scores"`
	Evidence  []EvidencePacket `json:"evidence"`
	CreatedAt time.Time        `json:"created_at"`
}

// TotalAllocation sums all allocation percentages (should be 100).
func (r *RecommendationResult) TotalAllocation() float64 {
	var total float64
	for _, s := range r.Scores {
		total += s.AllocationPct
	}
	return total
}

// RecommendationSummary is the projection used for history listings.
type RecommendationSummary struct {
	RunID     string    `json:"run_id"`
	Tickers   []string  `json:"tickers"`
	Horizon   Horizon   `json:"horizon"`
	TopPick   string    `json:"top_pick,omitempty"`
	TopScore  float64   `json:"top_score,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summarize projects a result into its history summary.
func (r *RecommendationResult) Summarize() RecommendationSummary {
	s := RecommendationSummary{
		RunID:     r.RunID,
		Tickers:   r.Tickers,
		Horizon:   r.Horizon,
		CreatedAt: r.CreatedAt,
	}
	if len(r.Scores) > 0 {
		s.TopPick = r.Scores[0].Ticker
		s.TopScore = r.Scores[0].CompositeScore
	}
	return s
}

func (h Horizon) String() string {
	return string(h)
}
