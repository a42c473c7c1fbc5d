package repositories

import "errors"

// Sentinel errors shared by all repository implementations. Services
// translate these into their own domain errors.
var (
	// ErrNotFound covers both a missing record and a malformed id, since
	// the API reports them identically.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique constraint rejects an insert.
	ErrDuplicate = errors.New("duplicate record")
)
