// Package embeddings defines the text and image encoders that map queries,
// titles, surrounding-text chunks and figure images into vector space.
package embeddings

import "context"

// TextEmbedder converts text into fixed-width vectors.
type TextEmbedder interface {
	// EmbedTexts returns one L2-normalized vector per input, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model identifies the encoder. It is persisted with the store.
	Model() string

	// Close releases any resources held by the embedder.
	Close() error
}

// ImageEmbedder encodes images, and text queries into the same space.
type ImageEmbedder interface {
	TextEmbedder

	// EmbedImages returns one L2-normalized vector per image, in input order.
	EmbedImages(ctx context.Context, images []Image) ([][]float32, error)
}
