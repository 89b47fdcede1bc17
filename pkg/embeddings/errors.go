package embeddings

import "errors"

// ErrEmbedding is returned when an encoder fails or returns unusable vectors.
var ErrEmbedding = errors.New("embedding failed")
