package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	go_json "github.com/goccy/go-json"
	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	auth_scoped INTEGER NOT NULL DEFAULT 0,
	expires_at INTEGER
);`

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore persists the cache to a local file, the same way the app
// keeps the rest of its client-local data.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init cache schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	var (
		data      []byte
		expiresAt sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache entry %q: %w", key, err)
	}

	if expiresAt.Valid && time.Now().UnixMilli() > expiresAt.Int64 {
		return false, nil
	}

	if err := go_json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache entry %q: %w", key, err)
	}
	return true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value any, opts Options) error {
	data, err := go_json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry %q: %w", key, err)
	}

	var expiresAt sql.NullInt64
	if opts.TTL > 0 {
		expiresAt = sql.NullInt64{Int64: time.Now().Add(opts.TTL).UnixMilli(), Valid: true}
	}

	authScoped := 0
	if opts.AuthScoped {
		authScoped = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, auth_scoped, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET
		 	value = excluded.value,
			auth_scoped = excluded.auth_scoped,
			expires_at = excluded.expires_at`,
		key, data, authScoped, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to set cache entry %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Invalidate(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE key = ?`, key,
	); err != nil {
		return fmt.Errorf("failed to invalidate cache entry %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) InvalidateAuthScoped(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE auth_scoped = 1`,
	); err != nil {
		return fmt.Errorf("failed to purge auth-scoped cache entries: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
