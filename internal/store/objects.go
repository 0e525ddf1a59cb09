package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mirror/internal/schema"
)

// Register implements the object lifecycle: an Unknown object becomes
// Typeless (registered without a typename) or Skeleton (registered with
// one, seeding its per-field rows); a Typeless object upgrades to
// Skeleton the first time a non-null typename arrives; a matching or
// null typename against an already-typed object is a no-op; a differing
// non-null typename is a hard, transaction-aborting error.
func Register(ctx context.Context, tx *Tx, s *schema.Schema, id string, typename *string) error {
	existing, found, err := lookupObject(ctx, tx, id)
	if err != nil {
		return err
	}

	switch {
	case !found:
		if _, err := tx.Exec(ctx, `INSERT INTO objects (id, typename, last_update) VALUES (?, ?, NULL)`, id, typename); err != nil {
			return fmt.Errorf("mirror: register %s: %w", id, err)
		}
		if typename == nil {
			return nil
		}
		return seedSkeleton(ctx, tx, s, id, *typename)

	case existing.typename == nil:
		if typename == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `UPDATE objects SET typename = ? WHERE id = ?`, *typename, id); err != nil {
			return fmt.Errorf("mirror: upgrade %s: %w", id, err)
		}
		return seedSkeleton(ctx, tx, s, id, *typename)

	default:
		if typename == nil || *typename == *existing.typename {
			return nil
		}
		return fmt.Errorf("%w: %s already registered as %s, got %s", ErrTypenameConflict, id, *existing.typename, *typename)
	}
}

type objectRow struct {
	typename   *string
	lastUpdate *int64
}

func lookupObject(ctx context.Context, tx *Tx, id string) (objectRow, bool, error) {
	var row objectRow
	err := tx.QueryRow(ctx, `SELECT typename, last_update FROM objects WHERE id = ?`, id).Scan(&row.typename, &row.lastUpdate)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return objectRow{}, false, nil
	case err != nil:
		return objectRow{}, false, fmt.Errorf("mirror: lookup %s: %w", id, err)
	default:
		return row, true, nil
	}
}

// seedSkeleton inserts the unloaded per-field rows an object needs the
// moment its typename becomes known: one row each for its primitives,
// links, and connections, all within the caller's transaction.
func seedSkeleton(ctx context.Context, tx *Tx, s *schema.Schema, id, typename string) error {
	layout, err := Layout(s, typename)
	if err != nil {
		return err
	}
	for _, name := range layout.Primitives {
		if _, err := tx.Exec(ctx, `INSERT INTO primitives (object_id, field_name, value) VALUES (?, ?, NULL)`, id, name); err != nil {
			return fmt.Errorf("mirror: seed primitive %s.%s: %w", id, name, err)
		}
	}
	for _, name := range layout.Links {
		if _, err := tx.Exec(ctx, `INSERT INTO links (parent_id, field_name, child_id) VALUES (?, ?, NULL)`, id, name); err != nil {
			return fmt.Errorf("mirror: seed link %s.%s: %w", id, name, err)
		}
	}
	for _, name := range layout.Connections {
		query := `INSERT INTO connections (object_id, field_name, last_update, total_count, has_next_page, end_cursor)
			VALUES (?, ?, NULL, NULL, NULL, NULL)`
		if _, err := tx.Exec(ctx, query, id, name); err != nil {
			return fmt.Errorf("mirror: seed connection %s.%s: %w", id, name, err)
		}
	}
	return nil
}

// ObjectTypename returns the current typename of id, or nil if it is
// Unknown or Typeless.
func ObjectTypename(ctx context.Context, tx *Tx, id string) (*string, error) {
	row, found, err := lookupObject(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return row.typename, nil
}
