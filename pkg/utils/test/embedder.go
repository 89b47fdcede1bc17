package testutils

import (
	"context"
	"fmt"
	"sync"

	"github.com/papercomputeco/figsearch/pkg/embeddings"
)

// MockEmbedder is a test embedder that returns predictable embeddings. It
// serves both the text and the image side.
type MockEmbedder struct {
	mu sync.Mutex

	// Texts maps an input text to its embedding.
	Texts map[string][]float32

	// Images maps an image name to its embedding.
	Images map[string][]float32

	// Default is returned for unknown inputs.
	Default []float32

	// FailOn causes an error when an input text or image name matches.
	FailOn string

	// Block, when set, makes every call wait until it is closed or the
	// context ends.
	Block chan struct{}

	// ModelName is returned by Model.
	ModelName string

	textCalls  int
	imageCalls int
}

func NewMockEmbedder(model string, def []float32) *MockEmbedder {
	return &MockEmbedder{
		Texts:     make(map[string][]float32),
		Images:    make(map[string][]float32),
		Default:   def,
		ModelName: model,
	}
}

func (m *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textCalls++
	return m.lookup(texts, m.Texts)
}

func (m *MockEmbedder) EmbedImages(ctx context.Context, images []embeddings.Image) ([][]float32, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageCalls++
	names := make([]string, len(images))
	for i, img := range images {
		names[i] = img.Name
	}
	return m.lookup(names, m.Images)
}

func (m *MockEmbedder) wait(ctx context.Context) error {
	if m.Block == nil {
		return nil
	}
	select {
	case <-m.Block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockEmbedder) lookup(keys []string, table map[string][]float32) ([][]float32, error) {
	out := make([][]float32, len(keys))
	for i, k := range keys {
		if m.FailOn != "" && k == m.FailOn {
			return nil, fmt.Errorf("%w: mock failure for: %s", embeddings.ErrEmbedding, k)
		}
		v, ok := table[k]
		if !ok {
			v = m.Default
		}
		out[i] = append([]float32(nil), v...)
	}
	return out, nil
}

// TextCalls returns how many EmbedTexts calls were made.
func (m *MockEmbedder) TextCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.textCalls
}

// ImageCalls returns how many EmbedImages calls were made.
func (m *MockEmbedder) ImageCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.imageCalls
}

func (m *MockEmbedder) Model() string {
	return m.ModelName
}

func (m *MockEmbedder) Close() error {
	return nil
}

var _ embeddings.ImageEmbedder = (*MockEmbedder)(nil)
