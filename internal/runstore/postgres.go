package runstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alphalens/backend/internal/contracts"
)

// Postgres is a RunStore backed by the recommendation_runs table.
// Scores and evidence are stored as JSONB since runs are immutable and
// always read back whole.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres run store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the recommendation_runs table if needed.
func (p *Postgres) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS recommendation_runs (
			run_id     TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			tickers    TEXT[] NOT NULL,
			horizon    TEXT NOT NULL,
			scores     JSONB NOT NULL,
			evidence   JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_user_created
			ON recommendation_runs (user_id, created_at DESC);
	`

	if _, err := p.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to migrate recommendation_runs: %w", err)
	}
	return nil
}

// Save persists a result and returns its run ID.
func (p *Postgres) Save(ctx context.Context, result *contracts.RecommendationResult) (string, error) {
	scores, err := json.Marshal(result.Scores)
	if err != nil {
		return "", fmt.Errorf("failed to encode scores: %w", err)
	}
	evidence, err := json.Marshal(result.Evidence)
	if err != nil {
		return "", fmt.Errorf("failed to encode evidence: %w", err)
	}

	query := `
		INSERT INTO recommendation_runs (
			run_id, user_id, tickers, horizon, scores, evidence, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = p.pool.Exec(ctx, query,
		result.RunID, result.UserID, result.Tickers, string(result.Horizon),
		scores, evidence, result.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	return result.RunID, nil
}

// GetByID returns a run, or ErrRunNotFound when absent.
func (p *Postgres) GetByID(ctx context.Context, runID string) (*contracts.RecommendationResult, error) {
	query := `
		SELECT run_id, user_id, tickers, horizon, scores, evidence, created_at
		FROM recommendation_runs
		WHERE run_id = $1
	`

	var result contracts.RecommendationResult
	var horizon string
	var scores, evidence []byte

	err := p.pool.QueryRow(ctx, query, runID).Scan(
		&result.RunID, &result.UserID, &result.Tickers, &horizon,
		&scores, &evidence, &result.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	result.Horizon = contracts.Horizon(horizon)
	if err := json.Unmarshal(scores, &result.Scores); err != nil {
		return nil, fmt.Errorf("failed to decode scores: %w", err)
	}
	if err := json.Unmarshal(evidence, &result.Evidence); err != nil {
		return nil, fmt.Errorf("failed to decode evidence: %w", err)
	}

	return &result, nil
}

// GetByUser returns run summaries for a user, newest first.
func (p *Postgres) GetByUser(ctx context.Context, userID string, limit, offset int) ([]contracts.RecommendationSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT run_id, tickers, horizon, scores, created_at
		FROM recommendation_runs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	summaries := make([]contracts.RecommendationSummary, 0, limit)
	for rows.Next() {
		var s contracts.RecommendationSummary
		var horizon string
		var scores []byte

		if err := rows.Scan(&s.RunID, &s.Tickers, &horizon, &scores, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		s.Horizon = contracts.Horizon(horizon)

		var parsed []contracts.StockScore
		if err := json.Unmarshal(scores, &parsed); err != nil {
			return nil, fmt.Errorf("failed to decode scores: %w", err)
		}
		if len(parsed) > 0 {
			s.TopPick = parsed[0].Ticker
			s.TopScore = parsed[0].CompositeScore
		}

		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return summaries, nil
}

// Delete removes a run. Returns false when the run did not exist.
func (p *Postgres) Delete(ctx context.Context, runID string) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM recommendation_runs WHERE run_id = $1`, runID)
	if err != nil {
		return false, fmt.Errorf("failed to delete run: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
