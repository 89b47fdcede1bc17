// Package flat provides an exact inner-product vector index that scans every
// stored vector on each search.
package flat

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/papercomputeco/figsearch/pkg/vector"
)

// magic prefixes every serialized flat index.
var magic = [4]byte{'F', 'L', 'A', 'T'}

// Index is an exact inner-product index. Vectors are kept row-major in a
// single backing slice.
type Index struct {
	dim  int
	n    int
	data []float32
}

// New creates an empty flat index of the given width.
func New(dim int) *Index {
	return &Index{dim: dim}
}

// Factory adapts New to vector.Factory.
func Factory(dim int) vector.Index {
	return New(dim)
}

// Dim returns the vector width.
func (i *Index) Dim() int { return i.dim }

// Len returns the number of stored vectors.
func (i *Index) Len() int { return i.n }

// Add appends vectors after checking every row width, so a rejected batch
// leaves the index untouched.
func (i *Index) Add(vectors [][]float32) error {
	for r, v := range vectors {
		if len(v) != i.dim {
			return fmt.Errorf("%w: row %d has width %d, index width %d", vector.ErrDimension, r, len(v), i.dim)
		}
	}
	for _, v := range vectors {
		i.data = append(i.data, v...)
	}
	i.n += len(vectors)
	return nil
}

// Search scores every vector against query and returns the best k positions.
// Equal scores are ordered by ascending position. k <= 0 yields nothing and k
// larger than Len yields every position.
func (i *Index) Search(query []float32, k int) ([]int64, []float32, error) {
	if len(query) != i.dim {
		return nil, nil, fmt.Errorf("%w: query width %d, index width %d", vector.ErrDimension, len(query), i.dim)
	}
	if k <= 0 || i.n == 0 {
		return []int64{}, []float32{}, nil
	}

	type scored struct {
		pos   int
		score float64
	}
	all := make([]scored, i.n)
	for p := 0; p < i.n; p++ {
		all[p] = scored{pos: p, score: vector.Dot(query, i.row(p))}
	}
	sort.SliceStable(all, func(a, b int) bool { return all[a].score > all[b].score })

	k = min(k, i.n)
	ids := make([]int64, k)
	scores := make([]float32, k)
	for n := 0; n < k; n++ {
		ids[n] = int64(all[n].pos)
		scores[n] = float32(all[n].score)
	}
	return ids, scores, nil
}

func (i *Index) row(p int) []float32 {
	return i.data[p*i.dim : (p+1)*i.dim]
}

// MarshalBinary stores: magic, dim(uint32), n(uint32), then n*dim float32
// values, all little-endian.
func (i *Index) MarshalBinary() ([]byte, error) {
	out := make([]byte, 12+4*len(i.data))
	copy(out[0:4], magic[:])
	binary.LittleEndian.PutUint32(out[4:8], uint32(i.dim))
	binary.LittleEndian.PutUint32(out[8:12], uint32(i.n))
	for j, f := range i.data {
		binary.LittleEndian.PutUint32(out[12+4*j:], math.Float32bits(f))
	}
	return out, nil
}

// UnmarshalBinary restores the index from bytes produced by MarshalBinary.
func (i *Index) UnmarshalBinary(data []byte) error {
	if len(data) < 12 || [4]byte(data[0:4]) != magic {
		return fmt.Errorf("%w: missing flat index header", vector.ErrCorrupt)
	}
	dim := int(binary.LittleEndian.Uint32(data[4:8]))
	n := int(binary.LittleEndian.Uint32(data[8:12]))
	if len(data) != 12+4*dim*n {
		return fmt.Errorf("%w: flat index holds %d bytes, header expects %d", vector.ErrCorrupt, len(data), 12+4*dim*n)
	}

	vals := make([]float32, dim*n)
	for j := range vals {
		vals[j] = math.Float32frombits(binary.LittleEndian.Uint32(data[12+4*j:]))
	}
	i.dim, i.n, i.data = dim, n, vals
	return nil
}

var _ vector.Index = (*Index)(nil)
