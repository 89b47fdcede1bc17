package testutils

import (
	"errors"

	"github.com/papercomputeco/figsearch/pkg/vector"
	"github.com/papercomputeco/figsearch/pkg/vector/flat"
)

// FailingIndex wraps a flat index and rejects the next Add while Armed is set.
// Arming is shared by every index a factory creates.
type FailingIndex struct {
	*flat.Index
	Armed *bool
}

// NewFailingIndexFactory returns a factory of FailingIndex sharing armed.
func NewFailingIndexFactory(armed *bool) vector.Factory {
	return func(dim int) vector.Index {
		return FailingIndex{Index: flat.New(dim), Armed: armed}
	}
}

func (f FailingIndex) Add(v [][]float32) error {
	if *f.Armed {
		*f.Armed = false
		return errors.New("mock index add failure")
	}
	return f.Index.Add(v)
}
