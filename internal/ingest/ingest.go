// Package ingest consumes one transport response for a packed plan and
// updates internal/store transactionally: one update row per response,
// dispatch by alias prefix, commit on success, roll back on any error.
// Transaction handling follows a begin, do the work, roll back on the
// first error, commit once everything has succeeded pattern.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/jensneuse/abstractlogger"

	"mirror/internal/planner"
	"mirror/internal/schema"
	"mirror/internal/store"
)

// Ingestor holds the inputs dispatch needs beyond the response itself:
// the schema driving field dispatch, the blacklist of ids to treat as
// null references, an optional typename guesser, and a diagnostic
// logger.
type Ingestor struct {
	Schema         *schema.Schema
	BlacklistedIDs map[string]struct{}
	GuessTypename  func(id string) (typename string, ok bool)
	Logger         abstractlogger.Logger
}

// New returns an Ingestor, defaulting an unset Logger to a no-op
// implementation.
func New(s *schema.Schema, blacklist map[string]struct{}, guess func(string) (string, bool), logger abstractlogger.Logger) *Ingestor {
	if logger == nil {
		logger = abstractlogger.Noop{}
	}
	if blacklist == nil {
		blacklist = map[string]struct{}{}
	}
	return &Ingestor{Schema: s, BlacklistedIDs: blacklist, GuessTypename: guess, Logger: logger}
}

// Ingest consumes one response for a plan built against st, inside a
// single transaction: a new updates row is created with nowMillis, every
// top-level aliased field is dispatched by its prefix, and the whole
// batch commits atomically or not at all. It returns the new update
// row's id so callers (the driver's network log) can link a
// request/response pair back to the ingest it produced.
func (ig *Ingestor) Ingest(ctx context.Context, st *store.Store, nowMillis int64, response map[string]any) (int64, error) {
	var updateID int64
	err := store.WithTx(ctx, st, func(tx *store.Tx) error {
		id, err := insertUpdate(ctx, tx, nowMillis)
		if err != nil {
			return err
		}
		updateID = id
		for key, value := range response {
			switch {
			case strings.HasPrefix(key, planner.TypenamesPrefix):
				if err := ig.dispatchTypenames(ctx, tx, value); err != nil {
					return fmt.Errorf("mirror: ingest %s: %w", key, err)
				}
			case strings.HasPrefix(key, planner.OwnDataPrefix):
				if err := ig.dispatchOwnData(ctx, tx, updateID, value); err != nil {
					return fmt.Errorf("mirror: ingest %s: %w", key, err)
				}
			case strings.HasPrefix(key, planner.NodePrefix):
				if err := ig.dispatchNode(ctx, tx, updateID, value); err != nil {
					return fmt.Errorf("mirror: ingest %s: %w", key, err)
				}
			default:
				return fmt.Errorf("mirror: unrecognised top-level alias %q", key)
			}
		}
		return nil
	})
	return updateID, err
}

func insertUpdate(ctx context.Context, tx *store.Tx, tsMillis int64) (int64, error) {
	res, err := tx.Exec(ctx, `INSERT INTO updates (ts_ms) VALUES (?)`, tsMillis)
	if err != nil {
		return 0, fmt.Errorf("mirror: insert update row: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("mirror: read update rowid: %w", err)
	}
	return id, nil
}

// register runs Register via the store, applying the blacklist (a
// blacklisted id is always treated as unregistered/null at the call
// site — see registerLinkTarget) and the optional typename guesser,
// whose mismatches are logged but never raised as an error.
func (ig *Ingestor) register(ctx context.Context, tx *store.Tx, id string, typename *string) error {
	if err := store.Register(ctx, tx, ig.Schema, id, typename); err != nil {
		return err
	}
	if typename != nil && ig.GuessTypename != nil {
		if guessed, ok := ig.GuessTypename(id); ok && guessed != *typename {
			ig.Logger.Warn("ingest: typename guess mismatch",
				abstractlogger.String("id", id),
				abstractlogger.String("guessed", guessed),
				abstractlogger.String("actual", *typename),
			)
		}
	}
	return nil
}
