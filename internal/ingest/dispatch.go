package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jensneuse/abstractlogger"

	"mirror/internal/schema"
	"mirror/internal/store"
)

// dispatchTypenames registers each (id, __typename) tuple returned by a
// typenames_* lookup, resolving Typeless objects to Skeleton by invoking
// the same registration routine external callers use.
func (ig *Ingestor) dispatchTypenames(ctx context.Context, tx *store.Tx, value any) error {
	tuples, err := asSlice(value)
	if err != nil {
		return err
	}
	for _, raw := range tuples {
		obj, err := asMap(raw)
		if err != nil {
			return err
		}
		id, err := asString(obj, "id")
		if err != nil {
			return err
		}
		typename, err := asString(obj, "__typename")
		if err != nil {
			return err
		}
		if err := ig.register(ctx, tx, id, &typename); err != nil {
			return err
		}
	}
	return nil
}

// dispatchOwnData ingests a homogeneous array of object records for one
// declared typename: verify each id already exists and has the expected
// typename, then write every field.
func (ig *Ingestor) dispatchOwnData(ctx context.Context, tx *store.Tx, updateID int64, value any) error {
	records, err := asSlice(value)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	var typename string
	seen := make(map[string]struct{}, len(records))
	for _, raw := range records {
		record, err := asMap(raw)
		if err != nil {
			return err
		}
		tn, err := asString(record, "__typename")
		if err != nil {
			return err
		}
		if typename == "" {
			typename = tn
		} else if tn != typename {
			return fmt.Errorf("%w: %q vs %q", ErrInconsistentResultSet, typename, tn)
		}

		id, err := asString(record, "id")
		if err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = struct{}{}

		if err := ig.ingestOwnDataRecord(ctx, tx, updateID, typename, id, record); err != nil {
			return err
		}
	}
	return nil
}

func (ig *Ingestor) ingestOwnDataRecord(ctx context.Context, tx *store.Tx, updateID int64, typename, id string, record map[string]any) error {
	existing, err := store.ObjectTypename(ctx, tx, id)
	if err != nil {
		return err
	}
	if existing == nil || *existing != typename {
		return fmt.Errorf("%w: %s as %s", ErrUnregisteredObject, id, typename)
	}

	d := ig.Schema.Lookup(typename)
	for _, f := range d.Fields {
		switch f.Kind {
		case schema.KindID:
			// already requested, carries no independent storage.
		case schema.KindPrimitive, schema.KindEnum:
			raw, ok := record[f.Name]
			if !ok {
				return fmt.Errorf("%w %q on %s", ErrMissingField, f.Name, id)
			}
			if err := setPrimitive(ctx, tx, id, f.Name, raw); err != nil {
				return err
			}
		case schema.KindNode:
			raw, ok := record[f.Name]
			if !ok {
				return fmt.Errorf("%w %q on %s", ErrMissingField, f.Name, id)
			}
			childID, err := ig.registerLinkTarget(ctx, tx, raw)
			if err != nil {
				return err
			}
			if err := setLink(ctx, tx, id, f.Name, childID); err != nil {
				return err
			}
		case schema.KindNested:
			raw, ok := record[f.Name]
			if !ok {
				return fmt.Errorf("%w %q on %s", ErrMissingField, f.Name, id)
			}
			if err := ig.ingestNested(ctx, tx, id, f, raw); err != nil {
				return err
			}
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE objects SET last_update = ? WHERE id = ?`, updateID, id); err != nil {
		return fmt.Errorf("mirror: stamp own-data load on %s: %w", id, err)
	}
	return nil
}

// ingestNested writes a Nested field's presence sentinel and, only when
// present, its eggs; its egg rows are left untouched when the group is
// null.
func (ig *Ingestor) ingestNested(ctx context.Context, tx *store.Tx, id string, f *schema.Field, raw any) error {
	if raw == nil {
		return setSentinel(ctx, tx, id, f.Name, false)
	}
	group, err := asMap(raw)
	if err != nil {
		return fmt.Errorf("mirror: nested field %q on %s: %w", f.Name, id, err)
	}
	if err := setSentinel(ctx, tx, id, f.Name, true); err != nil {
		return err
	}
	for _, egg := range f.Eggs {
		eggRaw, ok := group[egg.Name]
		if !ok {
			return fmt.Errorf("%w %q on %s", ErrMissingField, store.EggFieldName(f.Name, egg.Name), id)
		}
		switch egg.Kind {
		case schema.KindPrimitive, schema.KindEnum:
			if err := setPrimitive(ctx, tx, id, store.EggFieldName(f.Name, egg.Name), eggRaw); err != nil {
				return err
			}
		case schema.KindNode:
			childID, err := ig.registerLinkTarget(ctx, tx, eggRaw)
			if err != nil {
				return err
			}
			if err := setLink(ctx, tx, id, store.EggFieldName(f.Name, egg.Name), childID); err != nil {
				return err
			}
		}
	}
	return nil
}

// registerLinkTarget registers the object named by a node-shallow value
// and returns its id, or nil if the value is null or the id is
// blacklisted. Blacklisted ids are never registered — they simply
// resolve to a null reference wherever they appear.
func (ig *Ingestor) registerLinkTarget(ctx context.Context, tx *store.Tx, raw any) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	obj, err := asMap(raw)
	if err != nil {
		return nil, err
	}
	id, err := asString(obj, "id")
	if err != nil {
		return nil, err
	}
	if _, blacklisted := ig.BlacklistedIDs[id]; blacklisted {
		return nil, nil
	}

	var typename *string
	if tn, ok := obj["__typename"]; ok && tn != nil {
		s, ok := tn.(string)
		if !ok {
			return nil, fmt.Errorf("mirror: __typename on %s is not a string", id)
		}
		typename = &s
	}
	if err := ig.register(ctx, tx, id, typename); err != nil {
		return nil, err
	}
	return &id, nil
}

// dispatchNode ingests one node_* block: every non-"id" key is a
// connection update for the object named by "id".
func (ig *Ingestor) dispatchNode(ctx context.Context, tx *store.Tx, updateID int64, value any) error {
	obj, err := asMap(value)
	if err != nil {
		return err
	}
	objectID, err := asString(obj, "id")
	if err != nil {
		return err
	}
	typename, err := store.ObjectTypename(ctx, tx, objectID)
	if err != nil {
		return err
	}
	if typename == nil {
		return fmt.Errorf("%w: %s has no known typename", ErrUnregisteredObject, objectID)
	}
	d := ig.Schema.Lookup(*typename)

	for fieldName, raw := range obj {
		if fieldName == "id" {
			continue
		}
		f := d.Field(fieldName)
		if f == nil || f.Kind != schema.KindConnection {
			return fmt.Errorf("%w: %s.%s", ErrUnknownConnection, *typename, fieldName)
		}
		if raw == nil {
			ig.Logger.Warn("ingest: response omitted optional connection",
				abstractlogger.String("object", objectID), abstractlogger.String("field", fieldName))
			continue
		}
		if err := ig.ingestConnectionPage(ctx, tx, updateID, objectID, fieldName, raw); err != nil {
			return fmt.Errorf("mirror: connection %s.%s: %w", objectID, fieldName, err)
		}
	}
	return nil
}

func (ig *Ingestor) ingestConnectionPage(ctx context.Context, tx *store.Tx, updateID int64, objectID, fieldName string, raw any) error {
	page, err := asMap(raw)
	if err != nil {
		return err
	}
	pageInfo, err := asMap(page["pageInfo"])
	if err != nil {
		return fmt.Errorf("mirror: pageInfo: %w", err)
	}

	totalCount, ok := asNumber(page["totalCount"])
	if !ok {
		return fmt.Errorf("%w totalCount", ErrMissingField)
	}
	hasNextPage, ok := pageInfo["hasNextPage"].(bool)
	if !ok {
		return fmt.Errorf("%w pageInfo.hasNextPage", ErrMissingField)
	}
	var endCursor *string
	if ec, ok := pageInfo["endCursor"]; ok && ec != nil {
		s, ok := ec.(string)
		if !ok {
			return fmt.Errorf("mirror: pageInfo.endCursor is not a string")
		}
		endCursor = &s
	}

	if _, err := tx.Exec(ctx, `
		UPDATE connections
		SET last_update = ?, total_count = ?, has_next_page = ?, end_cursor = ?
		WHERE object_id = ? AND field_name = ?`,
		updateID, int64(totalCount), hasNextPage, endCursor, objectID, fieldName,
	); err != nil {
		return fmt.Errorf("mirror: update connection metadata: %w", err)
	}

	var connectionID int64
	if err := tx.QueryRow(ctx, `SELECT id FROM connections WHERE object_id = ? AND field_name = ?`, objectID, fieldName).Scan(&connectionID); err != nil {
		return fmt.Errorf("mirror: resolve connection id: %w", err)
	}

	var maxIdx int64
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(idx), 0) FROM connection_entries WHERE connection_id = ?`, connectionID).Scan(&maxIdx); err != nil {
		return fmt.Errorf("mirror: read max entry index: %w", err)
	}

	nodesRaw, _ := page["nodes"].([]any)
	for i, nodeRaw := range nodesRaw {
		childID, err := ig.registerLinkTarget(ctx, tx, nodeRaw)
		if err != nil {
			return err
		}
		idx := maxIdx + int64(i) + 1
		if _, err := tx.Exec(ctx, `INSERT INTO connection_entries (connection_id, idx, child_id) VALUES (?, ?, ?)`, connectionID, idx, childID); err != nil {
			return fmt.Errorf("mirror: append connection entry: %w", err)
		}
	}
	return nil
}

func setPrimitive(ctx context.Context, tx *store.Tx, id, fieldName string, raw any) error {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("mirror: encode %s.%s: %w", id, fieldName, err)
	}
	res, err := tx.Exec(ctx, `UPDATE primitives SET value = ? WHERE object_id = ? AND field_name = ?`, string(encoded), id, fieldName)
	if err != nil {
		return fmt.Errorf("mirror: write primitive %s.%s: %w", id, fieldName, err)
	}
	return checkRowAffected(res, id, fieldName)
}

// setSentinel writes the nested-presence indicator: "1" text when the
// group is present, "0" when it is null — stored as a literal digit, not
// as JSON-encoded text.
func setSentinel(ctx context.Context, tx *store.Tx, id, fieldName string, present bool) error {
	value := "0"
	if present {
		value = "1"
	}
	res, err := tx.Exec(ctx, `UPDATE primitives SET value = ? WHERE object_id = ? AND field_name = ?`, value, id, fieldName)
	if err != nil {
		return fmt.Errorf("mirror: write nested presence %s.%s: %w", id, fieldName, err)
	}
	return checkRowAffected(res, id, fieldName)
}

func setLink(ctx context.Context, tx *store.Tx, id, fieldName string, childID *string) error {
	res, err := tx.Exec(ctx, `UPDATE links SET child_id = ? WHERE parent_id = ? AND field_name = ?`, childID, id, fieldName)
	if err != nil {
		return fmt.Errorf("mirror: write link %s.%s: %w", id, fieldName, err)
	}
	return checkRowAffected(res, id, fieldName)
}

func checkRowAffected(res interface{ RowsAffected() (int64, error) }, id, fieldName string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mirror: check write of %s.%s: %w", id, fieldName, err)
	}
	if n == 0 {
		return fmt.Errorf("mirror: %s.%s has no seeded row (object was never promoted to Skeleton)", id, fieldName)
	}
	return nil
}

func asSlice(v any) ([]any, error) {
	s, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("mirror: expected a JSON array, got %T", v)
	}
	return s, nil
}

func asMap(v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("mirror: expected a JSON object, got %T", v)
	}
	return m, nil
}

func asString(obj map[string]any, key string) (string, error) {
	v, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrMissingField, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("mirror: field %q is not a string", key)
	}
	return s, nil
}

func asNumber(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}
