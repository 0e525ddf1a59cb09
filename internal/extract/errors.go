package extract

import "errors"

// ErrIncomplete marks a transitive dependency (or one of its connections)
// that has never been loaded, making extraction impossible.
var ErrIncomplete = errors.New("mirror: extraction incomplete")
