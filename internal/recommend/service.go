// Package recommend orchestrates a recommendation run: validate the
// request against plan limits, gather evidence for every ticker
// concurrently, score, rank, allocate and persist.
package recommend

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/internal/gateway"
	"github.com/alphalens/backend/internal/indicators"
	"github.com/alphalens/backend/internal/scoring"
	"github.com/alphalens/backend/pkg/logger"
)

// priceHistoryDays is how much history each run requests. Long enough
// for the 200-day moving average plus warmup.
const priceHistoryDays = 365

// Request is one recommendation run request, already authenticated.
type Request struct {
	UserID     string
	Tickers    []string
	Horizon    string
	PlanLimits contracts.PlanLimits
}

// Service runs the recommendation pipeline.
type Service struct {
	gateway     *gateway.Gateway
	store       contracts.RunStore
	logger      *logger.Logger
	maxArticles int
}

// NewService creates a recommendation service. maxArticles bounds how
// much news is pulled per ticker; non-positive falls back to 10.
func NewService(gw *gateway.Gateway, store contracts.RunStore, log *logger.Logger, maxArticles int) *Service {
	if maxArticles <= 0 {
		maxArticles = 10
	}
	return &Service{gateway: gw, store: store, logger: log, maxArticles: maxArticles}
}

// Run executes one recommendation run end to end. Validation failures
// return before any provider call; persistence failures fail the run.
func (s *Service) Run(ctx context.Context, req Request) (*contracts.RecommendationResult, error) {
	tickers, horizon, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	s.logger.WithFields(map[string]interface{}{
		"user_id": req.UserID,
		"tickers": tickers,
		"horizon": horizon.String(),
	}).Info("Starting recommendation run")

	// Gather evidence for all tickers concurrently. Any per-ticker
	// failure aborts the run: a partial ranking would be misleading.
	evidence := make([]contracts.EvidencePacket, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			packet, err := s.gatherEvidence(gctx, ticker, s.maxArticles)
			if err != nil {
				return err
			}
			evidence[i] = packet
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Score and rank.
	inputs := make([]scoring.TickerBreakdown, 0, len(evidence))
	for _, packet := range evidence {
		inputs = append(inputs, scoring.TickerBreakdown{
			Ticker: packet.Ticker,
			Breakdown: contracts.ScoreBreakdown{
				Technical:   scoring.TechnicalScore(packet.Technical),
				Fundamental: scoring.FundamentalScore(packet.Fundamental),
				Sentiment:   scoring.SentimentScore(packet.Sentiment),
			},
		})
	}
	scores := scoring.RankAndAllocate(inputs)

	result := &contracts.RecommendationResult{
		RunID:     uuid.NewString(),
		UserID:    req.UserID,
		Tickers:   tickers,
		Horizon:   horizon,
		Scores:    scores,
		Evidence:  evidence,
		CreatedAt: time.Now().UTC(),
	}

	if _, err := s.store.Save(ctx, result); err != nil {
		return nil, &contracts.PersistenceError{Op: "save run", Err: err}
	}

	s.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"user_id":  req.UserID,
		"top_pick": scores[0].Ticker,
		"duration": time.Since(start),
	}).Info("Recommendation run completed")

	return result, nil
}

// gatherEvidence assembles the immutable evidence packet for one ticker.
func (s *Service) gatherEvidence(ctx context.Context, ticker string, maxArticles int) (contracts.EvidencePacket, error) {
	var packet contracts.EvidencePacket

	series, marketAttr, err := s.gateway.PriceHistory(ctx, ticker, priceHistoryDays)
	if err != nil {
		return packet, err
	}

	metrics, fundAttr, err := s.gateway.Fundamentals(ctx, ticker)
	if err != nil {
		return packet, err
	}

	articles, newsAttr, err := s.gateway.News(ctx, ticker, maxArticles)
	if err != nil {
		return packet, err
	}

	sentiment, _, err := s.gateway.Analyze(ctx, ticker, articles)
	if err != nil {
		return packet, err
	}

	packet = contracts.EvidencePacket{
		Ticker:      ticker,
		Technical:   indicators.Compute(series),
		Fundamental: metrics,
		Sentiment:   sentiment,
		Articles:    articles,
		FetchedAt:   time.Now().UTC(),
		Attribution: contracts.EvidenceAttribution{
			Market:       marketAttr,
			Fundamentals: fundAttr,
			News:         newsAttr,
		},
	}
	return packet, nil
}

// GetRun returns a stored run if it belongs to the user. A run owned by
// someone else is reported as not found rather than forbidden, so run
// IDs cannot be probed.
func (s *Service) GetRun(ctx context.Context, userID, runID string) (*contracts.RecommendationResult, error) {
	result, err := s.store.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if result.UserID != userID {
		return nil, contracts.ErrRunNotFound
	}
	return result, nil
}

// DeleteRun removes a stored run. Ownership is checked by the caller.
func (s *Service) DeleteRun(ctx context.Context, runID string) (bool, error) {
	return s.store.Delete(ctx, runID)
}

// History returns run summaries for a user, newest first.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]contracts.RecommendationSummary, error) {
	return s.store.GetByUser(ctx, userID, limit, offset)
}
