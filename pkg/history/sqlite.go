package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteConfig contains configuration for the SQLite history store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/history.db",
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
	}
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	insert *sql.Stmt
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewSQLiteStore opens the history database and creates its schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Path == "" {
		return nil, NewStorageError("sqlite", "open", fmt.Errorf("database path cannot be empty"))
	}

	logger := slog.Default().With("component", "history.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, NewStorageError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("history store opened", "path", config.Path, "wal_mode", config.WALMode)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError("sqlite", "enable_wal", err)
		}
	}

	busy := s.config.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busy.Milliseconds())); err != nil {
		return NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	stmt, err := s.db.Prepare(insertRun)
	if err != nil {
		return NewStorageError("sqlite", "prepare_insert", err)
	}
	s.insert = stmt
	return nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, rec *Record) error {
	if rec == nil || rec.RunID == "" {
		return NewStorageError("sqlite", "save", fmt.Errorf("record must have a run id"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.insert.ExecContext(ctx,
		rec.RunID, rec.Timestamp.UnixNano(), rec.Source,
		rec.Counts.Clients, rec.Counts.Workers, rec.Counts.Tasks,
		rec.IsValid, rec.Errors, rec.Warnings, rec.CriticalErrors, rec.Fixes,
		rec.RulesValid, rec.RuleErrors, rec.RuleWarnings, rec.Conflicts,
		int64(rec.Duration),
	)
	if err != nil {
		return NewStorageError("sqlite", "save", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := selectRuns
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError("sqlite", "list", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		var (
			rec      Record
			at, took int64
		)
		err := rows.Scan(
			&rec.RunID, &at, &rec.Source,
			&rec.Counts.Clients, &rec.Counts.Workers, &rec.Counts.Tasks,
			&rec.IsValid, &rec.Errors, &rec.Warnings, &rec.CriticalErrors, &rec.Fixes,
			&rec.RulesValid, &rec.RuleErrors, &rec.RuleWarnings, &rec.Conflicts,
			&took,
		)
		if err != nil {
			return nil, NewStorageError("sqlite", "scan", err)
		}
		rec.Timestamp = time.Unix(0, at).UTC()
		rec.Duration = time.Duration(took)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError("sqlite", "list", err)
	}
	return out, nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, countRuns).Scan(&n); err != nil {
		return 0, NewStorageError("sqlite", "count", err)
	}
	return n, nil
}

// DeleteBefore implements Store.
func (s *SQLiteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.delete(ctx, "delete_before", deleteRunsBefore, cutoff.UnixNano())
}

// DeleteOldest implements Store.
func (s *SQLiteStore) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	return s.delete(ctx, "delete_oldest", deleteOldestRuns, n)
}

func (s *SQLiteStore) delete(ctx context.Context, op, query string, arg any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, query, arg)
	if err != nil {
		return 0, NewStorageError("sqlite", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError("sqlite", op, err)
	}
	if n > 0 {
		s.logger.Debug("deleted history records", "operation", op, "count", n)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insert != nil {
		s.insert.Close()
		s.insert = nil
	}
	if err := s.db.Close(); err != nil {
		return NewStorageError("sqlite", "close", err)
	}
	return nil
}
