package commands

import (
	"context"
	"fmt"

	"github.com/alphalens/backend/internal/cache"
	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/internal/gateway"
	"github.com/alphalens/backend/internal/providers/fmp"
	"github.com/alphalens/backend/internal/providers/mock"
	"github.com/alphalens/backend/internal/providers/newsapi"
	"github.com/alphalens/backend/internal/providers/polygon"
	"github.com/alphalens/backend/internal/providers/yahoo"
	"github.com/alphalens/backend/internal/recommend"
	"github.com/alphalens/backend/internal/runstore"
	"github.com/alphalens/backend/pkg/config"
	"github.com/alphalens/backend/pkg/database"
	"github.com/alphalens/backend/pkg/httputil"
	"github.com/alphalens/backend/pkg/logger"
)

// deps is everything a command needs after wiring.
type deps struct {
	cfg     *config.Config
	log     *logger.Logger
	cache   contracts.ProviderCache
	store   contracts.RunStore
	gateway *gateway.Gateway
	service *recommend.Service
	db      *database.DB
}

// buildDeps wires the full pipeline from configuration: cache backend,
// providers, gateway, run store and service.
func buildDeps(ctx context.Context) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	providerCache, err := cache.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	d := &deps{cfg: cfg, log: log, cache: providerCache}

	// Run storage: Postgres when configured, in-memory otherwise.
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		store := runstore.NewPostgres(db.Pool)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate run store: %w", err)
		}
		d.db = db
		d.store = store
		log.Info("Connected to database")
	} else {
		d.store = runstore.NewMemory()
		log.Warn("DATABASE_URL not set, using in-memory run store")
	}

	httpClient := httputil.New(cfg, log)

	opts := gateway.Options{
		Sentiment:            mock.NewSentiment(),
		FallbackMarket:       mock.NewMarketData(),
		FallbackFundamentals: mock.NewFundamentals(),
		FallbackNews:         mock.NewNews(),
		Cache:                providerCache,
		Logger:               log,
		Config:               cfg,
	}

	if !cfg.Providers.MockOnly {
		if cfg.Providers.PolygonAPIKey != "" {
			opts.Market = polygon.New(httpClient, log, cfg.Providers.PolygonAPIKey, cfg.Providers.PolygonBaseURL)
		}
		switch cfg.Providers.FundamentalsSource {
		case "yahoo":
			opts.Fundamentals = yahoo.New(httpClient, log, cfg.Providers.YahooBaseURL)
		default:
			if cfg.Providers.FMPAPIKey != "" {
				opts.Fundamentals = fmp.New(httpClient, log, cfg.Providers.FMPAPIKey, cfg.Providers.FMPBaseURL)
			}
		}
		if cfg.Providers.NewsAPIKey != "" {
			opts.News = newsapi.New(httpClient, log, cfg.Providers.NewsAPIKey, cfg.Providers.NewsAPIBaseURL)
		}
	}

	d.gateway = gateway.New(opts)
	d.service = recommend.NewService(d.gateway, d.store, log, cfg.Providers.NewsMaxArticles)

	return d, nil
}

// close releases held resources.
func (d *deps) close() {
	if d.db != nil {
		d.db.Close()
	}
}
