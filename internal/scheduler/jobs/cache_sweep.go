// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/pkg/logger"
)

// CacheSweep periodically evicts expired provider cache entries. Reads
// already skip expired entries; the sweep just reclaims space.
type CacheSweep struct {
	cache    contracts.ProviderCache
	logger   *logger.Logger
	interval time.Duration
}

// NewCacheSweep creates the cache sweep job.
func NewCacheSweep(cache contracts.ProviderCache, log *logger.Logger, interval time.Duration) *CacheSweep {
	return &CacheSweep{cache: cache, logger: log, interval: interval}
}

// Name returns the job name.
func (j *CacheSweep) Name() string {
	return "cache_sweep"
}

// Schedule returns the cron schedule expression.
func (j *CacheSweep) Schedule() string {
	return fmt.Sprintf("@every %s", j.interval)
}

// Run evicts expired entries.
func (j *CacheSweep) Run(ctx context.Context) error {
	removed, err := j.cache.ClearExpired(ctx)
	if err != nil {
		return fmt.Errorf("cache sweep failed: %w", err)
	}

	j.logger.WithField("removed", removed).Debug("Cache sweep completed")
	return nil
}
