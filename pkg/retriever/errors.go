package retriever

import "errors"

var (
	// ErrInvalidWeights is returned when the fusion weights cannot be used:
	// alpha outside [0, 1], a negative beta, or betas summing to zero.
	ErrInvalidWeights = errors.New("invalid fusion weights")

	// ErrInvalidParams is returned for negative result counts.
	ErrInvalidParams = errors.New("invalid search parameters")
)
