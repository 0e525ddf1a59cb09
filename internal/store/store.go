// Package store implements the mirror's relational layout: the fixed
// tables, their lifecycle invariants, and the meta-row schema/version
// binding checked at open. It is the sole owner of the *sql.DB; every
// other package reaches the database only through a *store.Store or a
// *store.Tx.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Config is the canonical, order-stable serialisation compared against
// an existing meta row on open.
type Config struct {
	Version           string `json:"version"`
	SchemaFingerprint string `json:"schema"`
	Options           string `json:"options"`
}

func (c Config) encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("mirror: encode config: %w", err)
	}
	return string(b), nil
}

// Store owns the single connection to the mirror's persisted file and
// guards against nested transactions: an attempt to begin a transaction
// while one is already in progress is a fatal programmer error.
type Store struct {
	db *sql.DB

	mu   sync.Mutex
	inTx bool
}

// Open creates or confirms the store's tables against the sqlite file at
// path, then compares the stored meta row against cfg. On a fresh file
// the canonical config is inserted and committed; on an existing file a
// mismatching config fails with ErrSchemaMismatch and leaves the file
// untouched.
func Open(ctx context.Context, path string, cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("mirror: open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("mirror: enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(ctx, cfg); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context, cfg Config) error {
	for _, stmt := range tableDDL {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mirror: create tables: %w", err)
		}
	}

	encoded, err := cfg.encode()
	if err != nil {
		return err
	}

	var existing string
	row := s.db.QueryRowContext(ctx, `SELECT config FROM meta WHERE id = 1`)
	switch err := row.Scan(&existing); {
	case err == sql.ErrNoRows:
		_, err := s.db.ExecContext(ctx, `INSERT INTO meta (id, config) VALUES (1, ?)`, encoded)
		if err != nil {
			return fmt.Errorf("mirror: seed meta: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("mirror: read meta: %w", err)
	case existing != encoded:
		return ErrSchemaMismatch
	default:
		return nil
	}
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying *sql.DB for read-only callers (the planner)
// that don't need transactional isolation.
func (s *Store) DB() *sql.DB {
	return s.db
}
