package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/alphalens/backend/internal/contracts"
	"github.com/alphalens/backend/pkg/config"
)

// New builds the ProviderCache backend selected by configuration.
func New(cfg *config.Config) (contracts.ProviderCache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return NewMemory(), nil

	case "sqlite":
		return NewSQLite(cfg.Cache.Path)

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return NewRedis(rdb), nil

	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}
