package ingest

import "errors"

// Fatal ingest error kinds not already covered by internal/store's own
// sentinels (ErrSchemaMismatch, ErrNestedTransaction,
// ErrTypenameConflict), following the same named, fmt.Errorf-wrapped
// error value convention.
var (
	// ErrMissingField marks a primitive, nested-presence, link, or
	// nested-egg value absent from an own-data response.
	ErrMissingField = errors.New("mirror: missing field in response")

	// ErrInconsistentResultSet marks an own-data batch whose elements
	// claim different typenames.
	ErrInconsistentResultSet = errors.New("mirror: inconsistent result set")

	// ErrUnknownConnection marks a node_* update for a field that is not
	// a declared connection on the object's current type.
	ErrUnknownConnection = errors.New("mirror: unknown connection")

	// ErrUnregisteredObject marks an owndata_* record whose id was never
	// registered (typenames/links/connections only ever name ids the
	// planner itself asked about).
	ErrUnregisteredObject = errors.New("mirror: object not registered")

	// ErrDuplicateID marks an owndata_* batch that names the same id
	// more than once.
	ErrDuplicateID = errors.New("mirror: duplicate id in own-data batch")
)
