// Package openai implements pkg/embeddings encoders for OpenAI-compatible
// /v1/embeddings endpoints. Images are sent as base64 data URIs, the input
// convention of CLIP models served behind OpenAI-compatible servers.
package openai

import (
	"context"
	"fmt"
	"os"
	"sort"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/papercomputeco/figsearch/pkg/embeddings"
)

const (
	// DefaultTextModel is the default text embedding model.
	DefaultTextModel = "text-embedding-3-small"

	// DefaultImageModel is the default image embedding model.
	DefaultImageModel = "clip-ViT-B-32"

	// APIKeyEnv is consulted when no API key is configured.
	APIKeyEnv = "OPENAI_API_KEY"
)

// EmbedderConfig holds configuration for the OpenAI-compatible embedder.
type EmbedderConfig struct {
	// BaseURL overrides the API URL (e.g., "http://localhost:8000/v1").
	BaseURL string

	// APIKey defaults to the OPENAI_API_KEY environment variable.
	APIKey string

	// Model is the embedding model to request.
	Model string

	// Dimensions asks the server for shortened embeddings when positive.
	Dimensions int
}

// Embedder wraps an OpenAI-compatible embeddings API.
type Embedder struct {
	client     *goopenai.Client
	model      string
	dimensions int
}

// NewEmbedder creates an embedder. model is used when cfg.Model is empty.
func NewEmbedder(cfg EmbedderConfig, model string) (*Embedder, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv(APIKeyEnv)
	}
	if key == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s environment variable not set", APIKeyEnv)
	}

	clientCfg := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Embedder{
		client:     goopenai.NewClientWithConfig(clientCfg),
		model:      model,
		dimensions: cfg.Dimensions,
	}, nil
}

// NewTextEmbedder creates an embedder defaulting to DefaultTextModel.
func NewTextEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	return NewEmbedder(cfg, DefaultTextModel)
}

// NewImageEmbedder creates an embedder defaulting to DefaultImageModel.
func NewImageEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	return NewEmbedder(cfg, DefaultImageModel)
}

// EmbedTexts embeds texts in one request.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return e.embed(ctx, texts)
}

// EmbedImages embeds images in one request, each sent as a data URI.
func (e *Embedder) EmbedImages(ctx context.Context, images []embeddings.Image) ([][]float32, error) {
	inputs := make([]string, len(images))
	for i, img := range images {
		inputs[i] = img.DataURI()
	}
	return e.embed(ctx, inputs)
}

func (e *Embedder) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return [][]float32{}, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model:      goopenai.EmbeddingModel(e.model),
		Input:      inputs,
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embeddings.ErrEmbedding, err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("%w: server returned %d embeddings for %d inputs", embeddings.ErrEmbedding, len(resp.Data), len(inputs))
	}

	sort.SliceStable(resp.Data, func(a, b int) bool { return resp.Data[a].Index < resp.Data[b].Index })

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		for j := range d.Embedding {
			v[j] = float32(d.Embedding[j])
		}
		out[i] = embeddings.Normalize(v)
	}
	return out, nil
}

// Model returns the requested model name.
func (e *Embedder) Model() string {
	return e.model
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.ImageEmbedder = (*Embedder)(nil)
