// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/papercomputeco/figsearch/pkg/embeddings"
	"github.com/papercomputeco/figsearch/pkg/embeddings/hashing"
	"github.com/papercomputeco/figsearch/pkg/embeddings/ollama"
	"github.com/papercomputeco/figsearch/pkg/embeddings/openai"
)

const (
	ProviderOllama  = "ollama"
	ProviderOpenAI  = "openai"
	ProviderHashing = "hashing"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	APIKey       string
	Dimensions   int
}

// NewTextEmbedder builds the encoder for titles, chunks and text queries.
func NewTextEmbedder(o *NewEmbedderOpts) (embeddings.TextEmbedder, error) {
	switch o.ProviderType {
	case ProviderOllama:
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL:    o.TargetURL,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case ProviderOpenAI:
		return openai.NewTextEmbedder(openai.EmbedderConfig{
			BaseURL:    o.TargetURL,
			APIKey:     o.APIKey,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case ProviderHashing:
		dims := o.Dimensions
		if dims == 0 {
			dims = hashing.DefaultTextDimensions
		}
		return hashing.NewEmbedder(dims, "text")
	default:
		return nil, fmt.Errorf("unsupported text embedding provider: %s", o.ProviderType)
	}
}

// NewImageEmbedder builds the encoder for figure images and image-space
// queries. Ollama serves no image embeddings.
func NewImageEmbedder(o *NewEmbedderOpts) (embeddings.ImageEmbedder, error) {
	switch o.ProviderType {
	case ProviderOpenAI:
		return openai.NewImageEmbedder(openai.EmbedderConfig{
			BaseURL:    o.TargetURL,
			APIKey:     o.APIKey,
			Model:      o.Model,
			Dimensions: o.Dimensions,
		})
	case ProviderHashing:
		dims := o.Dimensions
		if dims == 0 {
			dims = hashing.DefaultImageDimensions
		}
		return hashing.NewEmbedder(dims, "image")
	default:
		return nil, fmt.Errorf("unsupported image embedding provider: %s", o.ProviderType)
	}
}
