// Package store is the local cache behind the CLI: prompt drafts,
// per-thread history caches, and the anonymous trial flag. Entries are
// namespaced by user id and carry explicit TTLs instead of living
// forever under ad hoc string keys.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache (
    namespace TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    expires_at DATETIME,
    PRIMARY KEY (namespace, key)
);

CREATE INDEX IF NOT EXISTS idx_cache_expires_at ON cache(expires_at);
`

// anonNamespace holds state for visitors without an account, most
// importantly the one-shot premium trial flag.
const anonNamespace = "anonymous"

type Store struct {
	db *sql.DB
}

func New() (*Store, error) {
	dbPath, err := defaultDBPath()
	if err != nil {
		return nil, err
	}
	return NewWithPath(dbPath)
}

func NewWithPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

func defaultDBPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".layoutcraft", "cache.db"), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a value under (namespace, key). A zero ttl means the
// entry never expires.
func (s *Store) Put(ctx context.Context, namespace, key, value string, ttl time.Duration) error {
	var expiresAt any
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (namespace, key, value, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value,
		     created_at = excluded.created_at, expires_at = excluded.expires_at`,
		namespace, key, value, time.Now(), expiresAt)
	return err
}

// Get returns the value for (namespace, key). Expired entries are
// deleted on read and reported as absent.
func (s *Store) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM cache WHERE namespace = ? AND key = ?`,
		namespace, key)

	var value string
	var expiresAt sql.NullTime
	if err := row.Scan(&value, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}

	if expiresAt.Valid && time.Now().After(expiresAt.Time) {
		if err := s.Delete(ctx, namespace, key); err != nil {
			return "", false, err
		}
		return "", false, nil
	}
	return value, true, nil
}

func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cache WHERE namespace = ? AND key = ?`, namespace, key)
	return err
}

// ClearNamespace drops every entry for one user.
func (s *Store) ClearNamespace(ctx context.Context, namespace string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache WHERE namespace = ?`, namespace)
	return err
}

// PurgeExpired removes entries past their TTL and returns how many
// were dropped.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM cache WHERE expires_at IS NOT NULL AND expires_at < ?`, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
