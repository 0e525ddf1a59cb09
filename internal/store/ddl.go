package store

// tableDDL is the fixed set of tables backing the mirror, in dependency
// order (so foreign keys always reference an already-created table). The
// CHECK constraints encode the lifecycle invariants named alongside each
// table.
var tableDDL = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		id     INTEGER PRIMARY KEY CHECK (id = 1),
		config TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS updates (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		ts_ms INTEGER NOT NULL
	)`,

	// An object may have typename = NULL only while it has never been
	// loaded, i.e. whenever last_update is set typename must be set too.
	`CREATE TABLE IF NOT EXISTS objects (
		id          TEXT PRIMARY KEY,
		typename    TEXT,
		last_update INTEGER REFERENCES updates(id),
		CHECK (typename IS NOT NULL OR last_update IS NULL)
	)`,

	`CREATE TABLE IF NOT EXISTS primitives (
		object_id  TEXT NOT NULL REFERENCES objects(id),
		field_name TEXT NOT NULL,
		value      TEXT,
		UNIQUE (object_id, field_name)
	)`,

	`CREATE TABLE IF NOT EXISTS links (
		parent_id  TEXT NOT NULL REFERENCES objects(id),
		field_name TEXT NOT NULL,
		child_id   TEXT REFERENCES objects(id),
		UNIQUE (parent_id, field_name)
	)`,

	// last_update / total_count / has_next_page are set together or not at
	// all; end_cursor can only be populated once the connection has been
	// loaded at least once.
	`CREATE TABLE IF NOT EXISTS connections (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		object_id     TEXT NOT NULL REFERENCES objects(id),
		field_name    TEXT NOT NULL,
		last_update   INTEGER REFERENCES updates(id),
		total_count   INTEGER,
		has_next_page INTEGER,
		end_cursor    TEXT,
		UNIQUE (object_id, field_name),
		CHECK ((last_update IS NULL) = (total_count IS NULL)),
		CHECK ((total_count IS NULL) = (has_next_page IS NULL)),
		CHECK (last_update IS NOT NULL OR end_cursor IS NULL)
	)`,

	`CREATE TABLE IF NOT EXISTS connection_entries (
		connection_id INTEGER NOT NULL REFERENCES connections(id),
		idx           INTEGER NOT NULL,
		child_id      TEXT REFERENCES objects(id),
		UNIQUE (connection_id, idx)
	)`,

	`CREATE TABLE IF NOT EXISTS network_log (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		update_id    INTEGER REFERENCES updates(id),
		query        TEXT NOT NULL,
		variables    TEXT NOT NULL,
		requested_at INTEGER NOT NULL,
		responded_at INTEGER,
		response     TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_primitives_object ON primitives(object_id)`,
	`CREATE INDEX IF NOT EXISTS idx_links_parent ON links(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_links_child ON links(child_id)`,
	`CREATE INDEX IF NOT EXISTS idx_connections_object ON connections(object_id)`,
	`CREATE INDEX IF NOT EXISTS idx_connection_entries_connection ON connection_entries(connection_id)`,
	`CREATE INDEX IF NOT EXISTS idx_connection_entries_child ON connection_entries(child_id)`,
}
