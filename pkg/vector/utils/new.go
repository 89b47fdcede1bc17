// Package vectorutils selects a vector index implementation by name.
package vectorutils

import (
	"fmt"

	"github.com/papercomputeco/figsearch/pkg/vector"
	"github.com/papercomputeco/figsearch/pkg/vector/flat"
)

// IndexFlat is the exact inner-product index.
const IndexFlat = "flat"

// NewIndexFactory returns the index factory for the named index kind.
// An empty kind selects IndexFlat.
func NewIndexFactory(kind string) (vector.Factory, error) {
	switch kind {
	case "", IndexFlat:
		return flat.Factory, nil
	default:
		return nil, fmt.Errorf("unsupported vector index: %s", kind)
	}
}
