// Package ollama is a text encoder backed by the /api/embed endpoint of an
// Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/figsearch/pkg/embeddings"
)

const (
	// DefaultEmbeddingModel is used when EmbedderConfig.Model is empty.
	DefaultEmbeddingModel = "embeddinggemma"

	// DefaultBaseURL is used when EmbedderConfig.BaseURL is empty.
	DefaultBaseURL = "http://localhost:11434"

	requestTimeout = 2 * time.Minute
)

// EmbedderConfig selects the server and model.
type EmbedderConfig struct {
	BaseURL string
	Model   string

	// Dimensions truncates the returned vectors server side when positive.
	// Every vector must then have exactly this width.
	Dimensions int
}

// Embedder implements embeddings.TextEmbedder.
type Embedder struct {
	endpoint   string
	model      string
	dimensions int
	client     *http.Client
}

var _ embeddings.TextEmbedder = (*Embedder)(nil)

type embedRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Truncate   bool     `json:"truncate"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultEmbeddingModel
	}
	if cfg.Dimensions < 0 {
		return nil, fmt.Errorf("ollama: dimensions must not be negative, got %d", cfg.Dimensions)
	}

	return &Embedder{
		endpoint:   strings.TrimRight(cfg.BaseURL, "/") + "/api/embed",
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: requestTimeout},
	}, nil
}

// EmbedTexts sends all texts in one request and returns unit length vectors
// in input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var out embedResponse
	err := e.post(ctx, embedRequest{
		Model:      e.model,
		Input:      texts,
		Truncate:   true,
		Dimensions: e.dimensions,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embeddings.ErrEmbedding, err)
	}

	if got := len(out.Embeddings); got != len(texts) {
		return nil, fmt.Errorf("%w: ollama returned %d embeddings for %d inputs", embeddings.ErrEmbedding, got, len(texts))
	}
	if err := embeddings.CheckWidth(out.Embeddings); err != nil {
		return nil, err
	}
	if e.dimensions > 0 && len(out.Embeddings[0]) != e.dimensions {
		return nil, fmt.Errorf("%w: ollama returned width %d, configured %d", embeddings.ErrEmbedding, len(out.Embeddings[0]), e.dimensions)
	}

	for _, v := range out.Embeddings {
		embeddings.Normalize(v)
	}
	return out.Embeddings, nil
}

func (e *Embedder) post(ctx context.Context, body, into any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (e *Embedder) Model() string { return e.model }

// Close is a no-op.
func (e *Embedder) Close() error { return nil }
