package store

import "errors"

// ErrSchemaMismatch is returned by Open when an existing store's meta
// configuration does not match the schema, options, or version the
// caller opened it with.
var ErrSchemaMismatch = errors.New("mirror: incompatible schema, options, or version")

// ErrNestedTransaction is returned by Store.Begin when a transaction is
// already in progress. The mirror is single-threaded and single-writer;
// attempting to nest transactions is a programmer error.
var ErrNestedTransaction = errors.New("mirror: nested transaction")

// ErrTypenameConflict is returned by Register when an object already
// registered under one non-null typename is re-registered under a
// different one.
var ErrTypenameConflict = errors.New("mirror: typename conflict")
