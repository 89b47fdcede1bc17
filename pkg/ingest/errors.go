package ingest

import "errors"

var (
	// ErrMissingResource marks a figure whose image file could not be found.
	// It only appears in skip reports.
	ErrMissingResource = errors.New("missing image resource")

	// ErrInvalidDocument is returned when a metadata file cannot be read or
	// parsed.
	ErrInvalidDocument = errors.New("invalid document")
)
