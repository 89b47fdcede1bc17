package embeddings

import (
	"context"
	"fmt"
	"math"
)

// Default batch sizes for the three ingestion streams.
const (
	TitleBatchSize = 64
	ChunkBatchSize = 128
	ImageBatchSize = 32
)

// Normalize scales v to unit L2 norm in place. The zero vector is left as is.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// Batches splits items into consecutive slices of at most size elements.
// A size below one yields a single batch.
func Batches[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size < 1 {
		size = len(items)
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		out = append(out, items[start:min(start+size, len(items))])
	}
	return out
}

// EmbedBatched runs embed over items in batches of size and concatenates the
// results. Every returned row is checked to share one width.
func EmbedBatched[T any](
	ctx context.Context,
	items []T,
	size int,
	embed func(context.Context, []T) ([][]float32, error),
) ([][]float32, error) {
	out := make([][]float32, 0, len(items))
	for _, batch := range Batches(items, size) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		if len(rows) != len(batch) {
			return nil, fmt.Errorf("%w: encoder returned %d vectors for %d inputs", ErrEmbedding, len(rows), len(batch))
		}
		out = append(out, rows...)
	}
	if err := CheckWidth(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckWidth fails when rows are empty-width or do not share one width.
func CheckWidth(rows [][]float32) error {
	if len(rows) == 0 {
		return nil
	}
	w := len(rows[0])
	for i, r := range rows {
		if len(r) == 0 || len(r) != w {
			return fmt.Errorf("%w: vector %d has width %d, expected %d", ErrEmbedding, i, len(r), w)
		}
	}
	return nil
}
