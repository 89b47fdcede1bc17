package store

import "errors"

var (
	// ErrNotBuilt is returned when the store has not received any vectors yet.
	ErrNotBuilt = errors.New("store not built")

	// ErrDimensionMismatch is returned when a vector width disagrees with the
	// width fixed by the first batch.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrStoreCorrupt is returned when a persisted store is missing files or
	// its structures disagree on row counts.
	ErrStoreCorrupt = errors.New("store corrupt")

	// ErrInvalidBatch is returned when the slices of a batch are not aligned.
	ErrInvalidBatch = errors.New("invalid batch")

	// ErrUnknownRecord is returned for a record id outside the store.
	ErrUnknownRecord = errors.New("unknown record")
)
