package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alphalens/backend/internal/contracts"
)

func TestKey(t *testing.T) {
	t.Run("deterministic regardless of param order", func(t *testing.T) {
		a := Key("market", "price_history", "AAPL", map[string]string{"days": "365", "adjusted": "true"})
		b := Key("market", "price_history", "AAPL", map[string]string{"adjusted": "true", "days": "365"})
		assert.Equal(t, a, b)
		assert.Equal(t, "market:price_history:AAPL:adjusted=true:days=365", a)
	})

	t.Run("no params", func(t *testing.T) {
		assert.Equal(t, "fundamentals:metrics:MSFT", Key("fundamentals", "metrics", "MSFT", nil))
	})

	t.Run("distinct inputs distinct keys", func(t *testing.T) {
		a := Key("market", "price_history", "AAPL", map[string]string{"days": "365"})
		b := Key("market", "price_history", "AAPL", map[string]string{"days": "90"})
		assert.NotEqual(t, a, b)
	})
}

func newEntry(key string, ttl time.Duration) *contracts.CacheEntry {
	now := time.Now().UTC()
	return &contracts.CacheEntry{
		Key:       key,
		Provider:  "polygon",
		Ticker:    "AAPL",
		Data:      []byte(`{"ok":true}`),
		FetchedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		c := NewMemory()
		require.NoError(t, c.Set(ctx, newEntry("k1", time.Minute)))

		entry, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "polygon", entry.Provider)
		assert.Equal(t, []byte(`{"ok":true}`), entry.Data)
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		c := NewMemory()
		require.NoError(t, c.Set(ctx, newEntry("k1", -time.Second)))

		_, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, 0, c.Len(), "lazy delete on read")
	})

	t.Run("clear expired", func(t *testing.T) {
		c := NewMemory()
		require.NoError(t, c.Set(ctx, newEntry("live", time.Minute)))
		require.NoError(t, c.Set(ctx, newEntry("dead1", -time.Second)))
		require.NoError(t, c.Set(ctx, newEntry("dead2", -time.Hour)))

		removed, err := c.ClearExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("delete", func(t *testing.T) {
		c := NewMemory()
		require.NoError(t, c.Set(ctx, newEntry("k1", time.Minute)))
		require.NoError(t, c.Delete(ctx, "k1"))

		_, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()

	newCache := func(t *testing.T) *SQLite {
		t.Helper()
		c, err := NewSQLite(filepath.Join(t.TempDir(), "cache.sqlite"))
		require.NoError(t, err)
		t.Cleanup(func() { c.Close() })
		return c
	}

	t.Run("roundtrip preserves the entry", func(t *testing.T) {
		c := newCache(t)
		want := newEntry("k1", time.Minute)
		require.NoError(t, c.Set(ctx, want))

		got, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, want.Provider, got.Provider)
		assert.Equal(t, want.Ticker, got.Ticker)
		assert.Equal(t, want.Data, got.Data)
		assert.True(t, want.FetchedAt.Equal(got.FetchedAt))
	})

	t.Run("set replaces wholesale", func(t *testing.T) {
		c := newCache(t)
		require.NoError(t, c.Set(ctx, newEntry("k1", time.Minute)))

		updated := newEntry("k1", time.Minute)
		updated.Data = []byte(`{"v":2}`)
		require.NoError(t, c.Set(ctx, updated))

		got, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte(`{"v":2}`), got.Data)
	})

	t.Run("expired entries are misses", func(t *testing.T) {
		c := newCache(t)
		require.NoError(t, c.Set(ctx, newEntry("k1", -time.Second)))

		_, found, err := c.Get(ctx, "k1")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("clear expired", func(t *testing.T) {
		c := newCache(t)
		require.NoError(t, c.Set(ctx, newEntry("live", time.Minute)))
		require.NoError(t, c.Set(ctx, newEntry("dead", -time.Second)))

		removed, err := c.ClearExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		_, found, err := c.Get(ctx, "live")
		require.NoError(t, err)
		assert.True(t, found)
	})
}
