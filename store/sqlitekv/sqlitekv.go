/*
Package sqlitekv implements the storage collaborator over SQLite.

PURPOSE:
  Stores each collection blob as one row in a collections table. The
  record store treats values as opaque JSON; SQLite provides the
  durability and the atomic replace (a single UPSERT per write).

KEY TABLE:
  collections:
    name       TEXT PRIMARY KEY   -- "invoices" | "products" | "payments"
    payload    TEXT NOT NULL      -- UTF-8 JSON array of records
    updated_at TEXT NOT NULL      -- RFC3339, for inspection only

WAL MODE:
  Opened with WAL (Write-Ahead Logging): readers don't block the single
  writer and crash recovery is cleaner.

USAGE:
  kv, err := sqlitekv.New("./data/storefront.db")
  if err != nil { ... }
  defer kv.Close()
  store := record.Open(ctx, kv)

  Use ":memory:" for an in-memory database.

SEE ALSO:
  - record/kv.go: The contract this implements
  - store/filekv: File-per-collection alternative
*/
package sqlitekv

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// KV stores collection blobs in a SQLite table.
type KV struct {
	db *sql.DB
}

// New opens (and migrates) the database at dbPath.
func New(dbPath string) (*KV, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	kv := &KV{db: db}
	if err := kv.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return kv, nil
}

// Close closes the database connection.
func (s *KV) Close() error {
	return s.db.Close()
}

func (s *KV) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM collections WHERE name = ?", key,
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", key, err)
	}
	return payload, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO collections (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		key, string(value), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", key, err)
	}
	return nil
}
