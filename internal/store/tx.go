package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Tx wraps one *sql.Tx and releases its Store's transaction guard on
// Commit or Rollback, whichever happens first.
type Tx struct {
	tx    *sql.Tx
	store *Store
	done  bool
}

// Begin starts a transaction, failing with ErrNestedTransaction if one is
// already open on this Store.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	s.mu.Lock()
	if s.inTx {
		s.mu.Unlock()
		return nil, ErrNestedTransaction
	}
	s.inTx = true
	s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.mu.Lock()
		s.inTx = false
		s.mu.Unlock()
		return nil, fmt.Errorf("mirror: begin transaction: %w", err)
	}
	return &Tx{tx: tx, store: s}, nil
}

func (t *Tx) release() {
	t.store.mu.Lock()
	t.store.inTx = false
	t.store.mu.Unlock()
}

// Commit commits the transaction and releases the guard.
func (t *Tx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.release()
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("mirror: commit: %w", err)
	}
	return nil
}

// Rollback rolls back the transaction and releases the guard. Calling it
// after Commit is a safe no-op, so callers can always defer Rollback
// right after Begin.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.release()
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("mirror: rollback: %w", err)
	}
	return nil
}

// Exec, Query, and QueryRow pass through to the wrapped *sql.Tx so
// callers never need to import database/sql for ordinary statements.
func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

// WithTx runs fn inside a new transaction, committing on success and
// rolling back on any error fn returns or panics with.
func WithTx(ctx context.Context, s *Store, fn func(*Tx) error) (err error) {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w; rollback also failed: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
