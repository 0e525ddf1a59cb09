// Package extract materialises a transitively closed object graph from
// internal/store, rooted at one id. The walk is two-pass (allocate every
// dependency's record, then link them) so that cyclic references are
// handled without runtime back-patching: every shared child is the same
// Go map value wherever it is referenced, preserving identity-by-
// reference for readers.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"mirror/internal/schema"
	"mirror/internal/store"
)

// Record is one materialised object: a plain map keyed by field name
// (plus "__typename" and "id"). Maps are reference types in Go, so
// sharing one Record across several parent fields already gives every
// reader the same shared identity — no separate pointer indirection is
// needed.
type Record = map[string]any

// Extract returns the fully-materialised transitive dependency closure
// rooted at rootID. The whole operation runs inside one read transaction,
// which is always rolled back (never committed) since extraction writes
// nothing.
func Extract(ctx context.Context, st *store.Store, s *schema.Schema, rootID string) (Record, error) {
	// scratchID tags this run with a fresh, unambiguous identity for
	// diagnostics — this extractor never opens a real scratch SQL table
	// (the closure lives in an in-memory map), but errors are still easy
	// to attribute to one run when several run concurrently.
	scratchID := uuid.NewString()

	tx, err := st.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := computeClosure(ctx, tx, rootID)
	if err != nil {
		return nil, fmt.Errorf("mirror: extract %s (run %s): %w", rootID, scratchID, err)
	}
	if err := verifyLoaded(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("mirror: extract %s (run %s): %w", rootID, scratchID, err)
	}

	records, err := allocateRecords(ctx, tx, s, order)
	if err != nil {
		return nil, err
	}
	if err := fillPrimitives(ctx, tx, s, records, order); err != nil {
		return nil, err
	}
	if err := fillLinks(ctx, tx, records, order); err != nil {
		return nil, err
	}
	if err := fillConnections(ctx, tx, records); err != nil {
		return nil, err
	}

	root, ok := records[rootID]
	if !ok {
		return nil, fmt.Errorf("mirror: extract %s: root missing from its own closure", rootID)
	}
	return root, nil
}

// computeClosure performs the recursive set union that defines the
// transitive dependency closure: start with {root}, repeatedly union in
// the children of links and connection_entries rows (non-null child)
// whose parents are in the frontier, until no new ids are added. order
// preserves first-discovery order so later passes are deterministic.
func computeClosure(ctx context.Context, tx *store.Tx, rootID string) ([]string, error) {
	seen := map[string]bool{rootID: true}
	order := []string{rootID}
	frontier := []string{rootID}

	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			children, err := childrenOf(ctx, tx, id)
			if err != nil {
				return nil, err
			}
			for _, child := range children {
				if seen[child] {
					continue
				}
				seen[child] = true
				order = append(order, child)
				next = append(next, child)
			}
		}
		frontier = next
	}
	return order, nil
}

func childrenOf(ctx context.Context, tx *store.Tx, id string) ([]string, error) {
	var children []string

	linkRows, err := tx.Query(ctx, `SELECT child_id FROM links WHERE parent_id = ? AND child_id IS NOT NULL`, id)
	if err != nil {
		return nil, fmt.Errorf("mirror: query link children of %s: %w", id, err)
	}
	for linkRows.Next() {
		var child string
		if err := linkRows.Scan(&child); err != nil {
			linkRows.Close()
			return nil, fmt.Errorf("mirror: scan link child of %s: %w", id, err)
		}
		children = append(children, child)
	}
	if err := linkRows.Err(); err != nil {
		linkRows.Close()
		return nil, err
	}
	linkRows.Close()

	entryRows, err := tx.Query(ctx, `
		SELECT ce.child_id
		FROM connection_entries ce
		JOIN connections c ON c.id = ce.connection_id
		WHERE c.object_id = ? AND ce.child_id IS NOT NULL`, id)
	if err != nil {
		return nil, fmt.Errorf("mirror: query connection children of %s: %w", id, err)
	}
	defer entryRows.Close()
	for entryRows.Next() {
		var child string
		if err := entryRows.Scan(&child); err != nil {
			return nil, fmt.Errorf("mirror: scan connection child of %s: %w", id, err)
		}
		children = append(children, child)
	}
	return children, entryRows.Err()
}

// verifyLoaded enforces that every dependency has a loaded last_update,
// and that every one of its connections does too.
func verifyLoaded(ctx context.Context, tx *store.Tx, ids []string) error {
	for _, id := range ids {
		var lastUpdate *int64
		if err := tx.QueryRow(ctx, `SELECT last_update FROM objects WHERE id = ?`, id).Scan(&lastUpdate); err != nil {
			return fmt.Errorf("mirror: read %s: %w", id, err)
		}
		if lastUpdate == nil {
			return fmt.Errorf("%w: %s: own data", ErrIncomplete, id)
		}

		rows, err := tx.Query(ctx, `SELECT field_name FROM connections WHERE object_id = ? AND last_update IS NULL`, id)
		if err != nil {
			return fmt.Errorf("mirror: query unloaded connections of %s: %w", id, err)
		}
		var unloaded string
		for rows.Next() {
			if err := rows.Scan(&unloaded); err != nil {
				rows.Close()
				return fmt.Errorf("mirror: scan unloaded connection of %s: %w", id, err)
			}
			break
		}
		rows.Close()
		if unloaded != "" {
			return fmt.Errorf("%w: %s: %q connection", ErrIncomplete, id, unloaded)
		}
	}
	return nil
}

// allocateRecords seeds one result record per dependency, keyed by id,
// with its __typename/id and every declared connection field
// initialised to an empty slice so a zero-entry connection still yields
// a field rather than a missing key.
func allocateRecords(ctx context.Context, tx *store.Tx, s *schema.Schema, order []string) (map[string]Record, error) {
	records := make(map[string]Record, len(order))
	for _, id := range order {
		var typename string
		if err := tx.QueryRow(ctx, `SELECT typename FROM objects WHERE id = ?`, id).Scan(&typename); err != nil {
			return nil, fmt.Errorf("mirror: read typename of %s: %w", id, err)
		}
		record := Record{"__typename": typename, "id": id}
		for _, field := range s.ConnectionFieldNames(typename) {
			record[field] = []any{}
		}
		records[id] = record
	}
	return records, nil
}

// fillPrimitives walks primitives rows ordered by field name ascending
// (which places a nested field's own presence flag, e.g. "author",
// before its eggs, e.g. "author.date", since a prefix always sorts
// before a longer string sharing it).
func fillPrimitives(ctx context.Context, tx *store.Tx, s *schema.Schema, records map[string]Record, order []string) error {
	for _, id := range order {
		record := records[id]
		typename, _ := record["__typename"].(string)
		rows, err := tx.Query(ctx, `SELECT field_name, value FROM primitives WHERE object_id = ? ORDER BY field_name ASC`, id)
		if err != nil {
			return fmt.Errorf("mirror: query primitives of %s: %w", id, err)
		}
		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var fieldName string
				var value *string
				if err := rows.Scan(&fieldName, &value); err != nil {
					return fmt.Errorf("mirror: scan primitive of %s: %w", id, err)
				}
				if value == nil {
					// Never written, e.g. an egg of a nested group that
					// has only ever been absent.
					continue
				}
				if err := applyPrimitive(s, typename, record, fieldName, *value); err != nil {
					return fmt.Errorf("mirror: apply primitive %s.%s: %w", id, fieldName, err)
				}
			}
			return rows.Err()
		}()
		if err != nil {
			return err
		}
	}
	return nil
}

func applyPrimitive(s *schema.Schema, typename string, record Record, fieldName, value string) error {
	if nest, egg, ok := store.SplitEggFieldName(fieldName); ok {
		parent, isMap := record[nest].(Record)
		if !isMap {
			// Nested group absent: egg rows exist in storage but are
			// never surfaced.
			return nil
		}
		decoded, err := decodeJSON(value)
		if err != nil {
			return err
		}
		parent[egg] = decoded
		return nil
	}

	d := s.Lookup(typename)
	field := d.Field(fieldName)
	if field != nil && field.Kind == schema.KindNested {
		switch value {
		case "1":
			record[fieldName] = Record{}
		case "0":
			record[fieldName] = nil
		default:
			return fmt.Errorf("unexpected nested-presence sentinel %q", value)
		}
		return nil
	}

	decoded, err := decodeJSON(value)
	if err != nil {
		return err
	}
	record[fieldName] = decoded
	return nil
}

func decodeJSON(value string) (any, error) {
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err != nil {
		return nil, fmt.Errorf("mirror: decode stored value %q: %w", value, err)
	}
	return decoded, nil
}

// fillLinks resolves every link row to the record it points at, or nil.
func fillLinks(ctx context.Context, tx *store.Tx, records map[string]Record, order []string) error {
	for _, id := range order {
		record := records[id]
		rows, err := tx.Query(ctx, `SELECT field_name, child_id FROM links WHERE parent_id = ?`, id)
		if err != nil {
			return fmt.Errorf("mirror: query links of %s: %w", id, err)
		}
		err = func() error {
			defer rows.Close()
			for rows.Next() {
				var fieldName string
				var childID *string
				if err := rows.Scan(&fieldName, &childID); err != nil {
					return fmt.Errorf("mirror: scan link of %s: %w", id, err)
				}
				var target any
				if childID != nil {
					target = records[*childID]
				}
				if nest, egg, ok := store.SplitEggFieldName(fieldName); ok {
					if parent, isMap := record[nest].(Record); isMap {
						parent[egg] = target
					}
					continue
				}
				record[fieldName] = target
			}
			return rows.Err()
		}()
		if err != nil {
			return err
		}
	}
	return nil
}

// fillConnections walks connection_entries ordered by (parent id, field
// name, idx), appending each child's record (or null) into the array
// field allocateRecords created.
func fillConnections(ctx context.Context, tx *store.Tx, records map[string]Record) error {
	rows, err := tx.Query(ctx, `
		SELECT c.object_id, c.field_name, ce.child_id
		FROM connection_entries ce
		JOIN connections c ON c.id = ce.connection_id
		ORDER BY c.object_id, c.field_name, ce.idx`)
	if err != nil {
		return fmt.Errorf("mirror: query connection entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var objectID, fieldName string
		var childID *string
		if err := rows.Scan(&objectID, &fieldName, &childID); err != nil {
			return fmt.Errorf("mirror: scan connection entry: %w", err)
		}
		record, ok := records[objectID]
		if !ok {
			continue
		}
		var entry any
		if childID != nil {
			entry = records[*childID]
		}
		entries, _ := record[fieldName].([]any)
		record[fieldName] = append(entries, entry)
	}
	return rows.Err()
}
