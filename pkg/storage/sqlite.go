package storage

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

const kvSchema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// SQLiteBackend stores slots as rows of a single kv table
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) a SQLite database at path with WAL journaling
func OpenSQLite(path string) (*SQLiteBackend, error) {
	// ensure parent directory exists to avoid SQLITE_CANTOPEN errors
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteBackend(db)
}

// NewSQLiteBackend uses an existing handle and applies the schema
func NewSQLiteBackend(db *sql.DB) (*SQLiteBackend, error) {
	if _, err := db.Exec(kvSchema); err != nil {
		return nil, fmt.Errorf("ensure kv schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

// Get reads the row for key
func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set upserts the row for key
func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	return err
}

// Delete removes the row for key
func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// Close closes the database handle
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
