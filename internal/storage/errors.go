package storage

import "errors"

// Sentinel errors shared by every store implementation. Records are
// append-only: an insert either lands once or fails, it never updates.
var (
	// ErrNotFound reports a lookup for a record id that was never inserted.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey reports an insert whose key already exists.
	ErrDuplicateKey = errors.New("duplicate key: append-only store does not allow updates")

	// ErrInvalidInput reports a nil record or an empty required field.
	ErrInvalidInput = errors.New("invalid input")
)
