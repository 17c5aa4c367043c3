package recommend

import (
	"github.com/alphalens/backend/internal/contracts"
)

// validateRequest normalizes tickers, parses the horizon and enforces
// plan limits. Runs entirely before any data fetch.
func validateRequest(req Request) ([]string, contracts.Horizon, error) {
	tickers, err := contracts.NormalizeTickers(req.Tickers)
	if err != nil {
		return nil, "", err
	}

	horizon, err := contracts.ParseHorizon(req.Horizon)
	if err != nil {
		return nil, "", err
	}

	limits := req.PlanLimits
	if limits.MaxTickers > 0 && len(tickers) > limits.MaxTickers {
		return nil, "", contracts.NewValidationError(
			"too many tickers: %d requested, plan allows %d", len(tickers), limits.MaxTickers)
	}
	if len(limits.AllowedHorizons) > 0 && !limits.AllowsHorizon(horizon) {
		return nil, "", contracts.NewValidationError(
			"horizon %s not allowed by plan", horizon)
	}

	return tickers, horizon, nil
}
