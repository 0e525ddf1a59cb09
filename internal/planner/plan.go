// Package planner computes the staleness plan (what needs a typename
// resolved, what own-data needs refreshing, which connections need a
// page) and packs it into a bounded-size Document from internal/query.
// It never talks to the transport; it only reads the store and writes a
// query.Document.
package planner

import (
	"context"
	"database/sql"
	"fmt"
)

// Alias prefixes encoding a top-level selection's kind, so the ingestor
// can re-dispatch by prefix alone. No prefix may be a prefix of another,
// which is why "node_" isn't "nodes_".
const (
	TypenamesPrefix = "typenames_"
	OwnDataPrefix   = "owndata_"
	NodePrefix      = "node_"
)

// ObjectRef names one object awaiting own-data refresh.
type ObjectRef struct {
	ID       string
	Typename string
}

// ConnectionRef names one connection awaiting a page.
type ConnectionRef struct {
	ObjectID  string
	Typename  string
	FieldName string
	EndCursor *string
}

// Plan is the staleness snapshot computed against a cutoff timestamp.
type Plan struct {
	Typenames   []string
	OwnData     []ObjectRef
	Connections []ConnectionRef
}

// Empty reports whether every list is empty; the update loop terminates
// when this is true.
func (p *Plan) Empty() bool {
	return len(p.Typenames) == 0 && len(p.OwnData) == 0 && len(p.Connections) == 0
}

// Build computes a Plan against db as of sinceMillis, using three plain
// SELECT statements, each a direct query against objects/connections —
// no query-builder dependency needed.
func Build(ctx context.Context, db *sql.DB, sinceMillis int64) (*Plan, error) {
	typenames, err := queryTypenames(ctx, db)
	if err != nil {
		return nil, err
	}
	ownData, err := queryOwnData(ctx, db, sinceMillis)
	if err != nil {
		return nil, err
	}
	connections, err := queryConnections(ctx, db, sinceMillis)
	if err != nil {
		return nil, err
	}
	return &Plan{Typenames: typenames, OwnData: ownData, Connections: connections}, nil
}

func queryTypenames(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT id FROM objects WHERE typename IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("mirror: query typenames-to-resolve: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("mirror: scan typenames-to-resolve: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func queryOwnData(ctx context.Context, db *sql.DB, sinceMillis int64) ([]ObjectRef, error) {
	const q = `
		SELECT o.id, o.typename
		FROM objects o
		LEFT JOIN updates u ON u.id = o.last_update
		WHERE o.typename IS NOT NULL
		  AND (o.last_update IS NULL OR u.ts_ms < ?)
		ORDER BY o.id`
	rows, err := db.QueryContext(ctx, q, sinceMillis)
	if err != nil {
		return nil, fmt.Errorf("mirror: query own-data refresh: %w", err)
	}
	defer rows.Close()

	var refs []ObjectRef
	for rows.Next() {
		var ref ObjectRef
		if err := rows.Scan(&ref.ID, &ref.Typename); err != nil {
			return nil, fmt.Errorf("mirror: scan own-data refresh: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func queryConnections(ctx context.Context, db *sql.DB, sinceMillis int64) ([]ConnectionRef, error) {
	const q = `
		SELECT c.object_id, o.typename, c.field_name, c.end_cursor
		FROM connections c
		JOIN objects o ON o.id = c.object_id
		LEFT JOIN updates u ON u.id = c.last_update
		WHERE c.last_update IS NULL
		   OR u.ts_ms < ?
		   OR c.has_next_page = 1
		ORDER BY c.object_id, c.field_name`
	rows, err := db.QueryContext(ctx, q, sinceMillis)
	if err != nil {
		return nil, fmt.Errorf("mirror: query connections-to-refresh: %w", err)
	}
	defer rows.Close()

	var refs []ConnectionRef
	for rows.Next() {
		var ref ConnectionRef
		if err := rows.Scan(&ref.ObjectID, &ref.Typename, &ref.FieldName, &ref.EndCursor); err != nil {
			return nil, fmt.Errorf("mirror: scan connections-to-refresh: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
