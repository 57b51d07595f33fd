package suggest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"mercator-hq/tessera/pkg/rules"
)

// SQLiteCache implements Cache in a SQLite database so suggestions survive
// across CLI invocations.
type SQLiteCache struct {
	db        *sql.DB
	mu        sync.RWMutex
	closeOnce sync.Once
	now       func() time.Time

	getStmt    *sql.Stmt
	putStmt    *sql.Stmt
	deleteStmt *sql.Stmt
}

// SQLiteCacheConfig configures the SQLite cache.
type SQLiteCacheConfig struct {
	// Path is the database file.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS suggestion_cache (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	expires_at INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_suggestion_cache_expires ON suggestion_cache(expires_at);
`

// NewSQLiteCache opens or creates a SQLite cache at path.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	return NewSQLiteCacheWithConfig(SQLiteCacheConfig{Path: path})
}

// NewSQLiteCacheWithConfig opens or creates a SQLite cache.
func NewSQLiteCacheWithConfig(cfg SQLiteCacheConfig) (*SQLiteCache, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("cache path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports single writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	c := &SQLiteCache{db: db, now: time.Now}
	if err := c.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) prepareStatements() error {
	var err error

	c.getStmt, err = c.db.Prepare(`SELECT value, expires_at FROM suggestion_cache WHERE key = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	c.putStmt, err = c.db.Prepare(`
		INSERT INTO suggestion_cache (key, value, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			created_at = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	c.deleteStmt, err = c.db.Prepare(`DELETE FROM suggestion_cache WHERE key = ? AND expires_at = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}
	return nil
}

// Get implements Cache. Expired entries are deleted on read.
func (c *SQLiteCache) Get(ctx context.Context, key string) ([]rules.Rule, bool, error) {
	c.mu.RLock()
	var (
		value     string
		expiresAt int64
	)
	err := c.getStmt.QueryRowContext(ctx, key).Scan(&value, &expiresAt)
	c.mu.RUnlock()

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if expiresAt != 0 && c.now().UnixNano() >= expiresAt {
		c.mu.Lock()
		_, err := c.deleteStmt.ExecContext(ctx, key, expiresAt)
		c.mu.Unlock()
		if err != nil {
			return nil, false, fmt.Errorf("failed to evict cache entry: %w", err)
		}
		return nil, false, nil
	}

	var out []rules.Rule
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return out, true, nil
}

// Put implements Cache.
func (c *SQLiteCache) Put(ctx context.Context, key string, value []rules.Rule, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	now := c.now()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now.Add(ttl).UnixNano()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.putStmt.ExecContext(ctx, key, string(data), expiresAt, now.Unix()); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Clear implements Cache.
func (c *SQLiteCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.db.ExecContext(ctx, `DELETE FROM suggestion_cache`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Close implements Cache.
func (c *SQLiteCache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{c.getStmt, c.putStmt, c.deleteStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		err = c.db.Close()
	})
	return err
}
