package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alphalens/backend/internal/contracts"
)

const redisKeyPrefix = "alphalens:cache:"

// Redis is a ProviderCache backed by Redis, for deployments where the
// cache is shared across instances. Expiry is delegated to Redis TTLs.
type Redis struct {
	rdb *redis.Client
}

// NewRedis creates a Redis-backed cache around an existing client.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

// Get returns the entry for key, or a miss when absent. Entries past
// their recorded expiry are treated as misses even if Redis has not
// evicted them yet.
func (r *Redis) Get(ctx context.Context, key string) (*contracts.CacheEntry, bool, error) {
	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &contracts.CacheError{Op: "get", Key: key, Err: err}
	}

	var entry contracts.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, &contracts.CacheError{Op: "get", Key: key, Err: err}
	}

	if entry.Expired(time.Now()) {
		return nil, false, nil
	}

	return &entry, true, nil
}

// Set stores an entry with its remaining TTL.
func (r *Redis) Set(ctx context.Context, entry *contracts.CacheEntry) error {
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return &contracts.CacheError{Op: "set", Key: entry.Key, Err: err}
	}

	if err := r.rdb.Set(ctx, redisKeyPrefix+entry.Key, data, ttl).Err(); err != nil {
		return &contracts.CacheError{Op: "set", Key: entry.Key, Err: err}
	}
	return nil
}

// Delete removes an entry.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return &contracts.CacheError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// ClearExpired is a no-op: Redis evicts expired keys natively.
func (r *Redis) ClearExpired(ctx context.Context) (int, error) {
	return 0, nil
}
