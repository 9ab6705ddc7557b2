package store

import (
	"git.home.luguber.info/inful/astdoc/internal/foundation/errors"
)

var (
	// ErrNotFound reports a record id that is unknown for its type tag.
	ErrNotFound = errors.NotFoundError("record not found").Build()

	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.StoreError("could not open record database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.StoreError("failed to initialize record schema").Build()

	// ErrWriteFailed indicates storing a record failed.
	ErrWriteFailed = errors.StoreError("failed to store record").Build()

	// ErrQueryFailed indicates a record lookup failed for a reason other than absence.
	ErrQueryFailed = errors.StoreError("failed to query record").Build()

	// ErrGatherFailed indicates a data file could not be read or decoded.
	ErrGatherFailed = errors.StoreError("failed to gather data file").Build()
)
