package vector

import "errors"

var (
	// ErrDimension is returned when a vector width does not match the index.
	ErrDimension = errors.New("vector dimension mismatch")

	// ErrCorrupt is returned when a serialized index cannot be decoded.
	ErrCorrupt = errors.New("corrupt index data")
)
