// Package plans loads the subscription plan catalog from YAML and
// resolves per-plan limits.
package plans

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alphalens/backend/internal/contracts"
)

// DefaultPlan is assumed when a request carries no plan.
const DefaultPlan = "free"

// Plan is one subscription tier from the catalog.
type Plan struct {
	Name            string   `yaml:"name"`
	MaxTickers      int      `yaml:"max_tickers"`
	AllowedHorizons []string `yaml:"allowed_horizons"`
}

// Catalog is the full plan catalog.
type Catalog struct {
	Plans []Plan `yaml:"plans"`

	byName map[string]Plan
}

// Load reads and validates the catalog. Unknown YAML fields fail fast
// so typos in the file are caught at startup instead of silently
// loosening a limit.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plans file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}

	if err := catalog.validate(); err != nil {
		return nil, err
	}

	catalog.byName = make(map[string]Plan, len(catalog.Plans))
	for _, p := range catalog.Plans {
		catalog.byName[p.Name] = p
	}
	return &catalog, nil
}

func (c *Catalog) validate() error {
	if len(c.Plans) == 0 {
		return fmt.Errorf("plans catalog is empty")
	}

	seen := make(map[string]bool, len(c.Plans))
	hasDefault := false
	for _, p := range c.Plans {
		if p.Name == "" {
			return fmt.Errorf("plan with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate plan: %s", p.Name)
		}
		seen[p.Name] = true
		if p.Name == DefaultPlan {
			hasDefault = true
		}

		if p.MaxTickers <= 0 {
			return fmt.Errorf("plan %s: max_tickers must be positive", p.Name)
		}
		if len(p.AllowedHorizons) == 0 {
			return fmt.Errorf("plan %s: at least one horizon required", p.Name)
		}
		for _, h := range p.AllowedHorizons {
			if _, err := contracts.ParseHorizon(h); err != nil {
				return fmt.Errorf("plan %s: %w", p.Name, err)
			}
		}
	}

	if !hasDefault {
		return fmt.Errorf("plans catalog must define the %q plan", DefaultPlan)
	}
	return nil
}

// Limits resolves the limits for a plan name. Unknown plans fall back
// to the default plan's limits.
func (c *Catalog) Limits(planName string) contracts.PlanLimits {
	plan, ok := c.byName[planName]
	if !ok {
		plan = c.byName[DefaultPlan]
	}

	horizons := make([]contracts.Horizon, 0, len(plan.AllowedHorizons))
	for _, h := range plan.AllowedHorizons {
		parsed, err := contracts.ParseHorizon(h)
		if err != nil {
			continue
		}
		horizons = append(horizons, parsed)
	}

	return contracts.PlanLimits{
		MaxTickers:      plan.MaxTickers,
		AllowedHorizons: horizons,
	}
}
