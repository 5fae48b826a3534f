package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteBlob keeps blobs in a single kv table of a sqlite database. It exists
// for deployments that want their client state in one inspectable file with
// transactional writes.
type SQLiteBlob struct {
	db *sql.DB
}

// NewSQLiteBlob opens (creating if necessary) the database at path.
func NewSQLiteBlob(path string) (*SQLiteBlob, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}
	return &SQLiteBlob{db: db}, nil
}

// Load reads the blob for key. A missing row is not an error.
func (s *SQLiteBlob) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query failed: %w", err)
	}
	return value, true, nil
}

// Save upserts the blob for key.
func (s *SQLiteBlob) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, data)
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteBlob) Close() error { return s.db.Close() }
