package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alphalens/backend/internal/contracts"
)

// SQLite is a ProviderCache backed by a local SQLite database, so cached
// provider responses survive process restarts.
type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLite opens (or creates) the cache database and runs migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent reads while a fetch writes through.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLite{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return c, nil
}

func (c *SQLite) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			cache_key  TEXT PRIMARY KEY,
			provider   TEXT NOT NULL,
			ticker     TEXT NOT NULL,
			data       BLOB NOT NULL,
			fetched_at INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache_entries(expires_at)`,
		`CREATE INDEX IF NOT EXISTS idx_cache_provider_ticker ON cache_entries(provider, ticker)`,
	}

	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// Get returns the entry for key. Expired entries are deleted lazily and
// reported as misses.
func (c *SQLite) Get(ctx context.Context, key string) (*contracts.CacheEntry, bool, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT cache_key, provider, ticker, data, fetched_at, expires_at
		FROM cache_entries
		WHERE cache_key = ?`, key)

	var entry contracts.CacheEntry
	var fetchedAt, expiresAt int64

	err := row.Scan(&entry.Key, &entry.Provider, &entry.Ticker, &entry.Data, &fetchedAt, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &contracts.CacheError{Op: "get", Key: key, Err: err}
	}

	entry.FetchedAt = time.Unix(0, fetchedAt).UTC()
	entry.ExpiresAt = time.Unix(0, expiresAt).UTC()

	if entry.Expired(time.Now()) {
		_ = c.Delete(ctx, key)
		return nil, false, nil
	}

	return &entry, true, nil
}

// Set stores an entry, replacing any previous value wholesale.
func (c *SQLite) Set(ctx context.Context, entry *contracts.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cache_entries
		(cache_key, provider, ticker, data, fetched_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Key, entry.Provider, entry.Ticker, entry.Data,
		entry.FetchedAt.UnixNano(), entry.ExpiresAt.UnixNano(),
	)
	if err != nil {
		return &contracts.CacheError{Op: "set", Key: entry.Key, Err: err}
	}
	return nil
}

// Delete removes an entry.
func (c *SQLite) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE cache_key = ?`, key); err != nil {
		return &contracts.CacheError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

// ClearExpired removes all expired entries and returns the count.
func (c *SQLite) ClearExpired(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE expires_at <= ?`, time.Now().UnixNano())
	if err != nil {
		return 0, &contracts.CacheError{Op: "clear_expired", Err: err}
	}

	count, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(count), nil
}

// Close closes the underlying database.
func (c *SQLite) Close() error {
	return c.db.Close()
}
