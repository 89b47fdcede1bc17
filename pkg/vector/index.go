// Package vector defines the nearest-neighbor index capability consumed by the
// figure store and the vector math shared by recall and rerank.
package vector

// Index is an append-only nearest-neighbor index over fixed-width vectors
// scored by inner product. Positions are assigned in insertion order starting
// at zero.
type Index interface {
	// Dim returns the vector width the index was created with.
	Dim() int

	// Len returns the number of stored vectors.
	Len() int

	// Add appends vectors. Every row must have width Dim.
	Add(vectors [][]float32) error

	// Search returns up to k positions ordered by descending inner product
	// with query, together with their scores.
	Search(query []float32, k int) ([]int64, []float32, error)

	// MarshalBinary serializes the index.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary replaces the index contents with a serialized index.
	UnmarshalBinary(data []byte) error
}

// Factory creates an empty index of the given width.
type Factory func(dim int) Index

// Dot returns the inner product of a and b accumulated in float64. Both
// slices must have the same length.
func Dot(a, b []float32) float64 {
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
