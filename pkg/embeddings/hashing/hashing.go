// Package hashing implements a deterministic local encoder based on feature
// hashing. Texts hash their tokens and images hash fixed byte windows, so
// vectors are stable across runs and machines without any model server.
// Text similarity is lexical; image similarity only detects identical content.
package hashing

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/papercomputeco/figsearch/pkg/embeddings"
)

const (
	// DefaultTextDimensions is the default width of text vectors.
	DefaultTextDimensions = 256

	// DefaultImageDimensions is the default width of image vectors.
	DefaultImageDimensions = 128

	imageWindow = 64
)

// Embedder hashes features into a fixed number of buckets.
type Embedder struct {
	dims int
	seed string
}

// NewEmbedder creates an encoder of width dims. Encoders with different seeds
// place the same feature in unrelated buckets.
func NewEmbedder(dims int, seed string) (*Embedder, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("hashing dimensions must be positive, got %d", dims)
	}
	return &Embedder{dims: dims, seed: seed}, nil
}

// EmbedTexts hashes the tokens of each text.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := make([]float32, e.dims)
		for _, tok := range Tokens(t) {
			e.add(v, []byte(tok))
		}
		out[i] = embeddings.Normalize(v)
	}
	return out, nil
}

// EmbedImages hashes consecutive byte windows of each image.
func (e *Embedder) EmbedImages(ctx context.Context, images []embeddings.Image) ([][]float32, error) {
	out := make([][]float32, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v := make([]float32, e.dims)
		for start := 0; start < len(img.Data); start += imageWindow {
			e.add(v, img.Data[start:min(start+imageWindow, len(img.Data))])
		}
		out[i] = embeddings.Normalize(v)
	}
	return out, nil
}

// add folds one feature into v with a hash-derived sign.
func (e *Embedder) add(v []float32, feature []byte) {
	d := xxhash.New()
	_, _ = d.WriteString(e.seed)
	_, _ = d.Write(feature)
	h := d.Sum64()

	bucket := h % uint64(len(v))
	if h>>63 == 1 {
		v[bucket]--
	} else {
		v[bucket]++
	}
}

// Tokens lowercases text and splits it into words of letters and digits.
// Han, Hiragana, Katakana and Hangul runes are emitted one token each.
func Tokens(text string) []string {
	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// Model names the encoder by seed and width.
func (e *Embedder) Model() string {
	return fmt.Sprintf("hashing-%s-%d", e.seed, e.dims)
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.ImageEmbedder = (*Embedder)(nil)
