// Package retriever is the figure retrieval engine: it orchestrates ingestion
// into the multi-channel store and answers queries by recalling candidates
// from every channel, rescoring them exactly and fusing the channel scores.
package retriever

import (
	"log/slog"
	"sync"

	"github.com/papercomputeco/figsearch/pkg/embeddings"
	"github.com/papercomputeco/figsearch/pkg/eventstream"
	"github.com/papercomputeco/figsearch/pkg/eventstream/nop"
	"github.com/papercomputeco/figsearch/pkg/ingest"
	"github.com/papercomputeco/figsearch/pkg/logger"
	"github.com/papercomputeco/figsearch/pkg/store"
)

// Engine ties a store to its encoders. Searches run concurrently; ingestions
// are serialized so record ids follow call order.
type Engine struct {
	store     *store.Store
	text      embeddings.TextEmbedder
	image     embeddings.ImageEmbedder
	builder   *ingest.Builder
	publisher eventstream.Publisher
	logger    *slog.Logger

	titleBatch int
	chunkBatch int
	imageBatch int

	writeMu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithBuilder sets the record builder used by Ingest.
func WithBuilder(b *ingest.Builder) Option {
	return func(e *Engine) {
		if b != nil {
			e.builder = b
		}
	}
}

// WithPublisher sets the publisher notified after each committed ingestion.
func WithPublisher(p eventstream.Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publisher = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithBatchSizes sets the encoder batch sizes for titles, chunks and images.
// Non-positive sizes keep the defaults.
func WithBatchSizes(title, chunk, image int) Option {
	return func(e *Engine) {
		if title > 0 {
			e.titleBatch = title
		}
		if chunk > 0 {
			e.chunkBatch = chunk
		}
		if image > 0 {
			e.imageBatch = image
		}
	}
}

// New creates an engine over st.
func New(st *store.Store, text embeddings.TextEmbedder, image embeddings.ImageEmbedder, opts ...Option) *Engine {
	e := &Engine{
		store:      st,
		text:       text,
		image:      image,
		builder:    ingest.NewBuilder(),
		publisher:  nop.NewPublisher(),
		logger:     logger.Nop(),
		titleBatch: embeddings.TitleBatchSize,
		chunkBatch: embeddings.ChunkBatchSize,
		imageBatch: embeddings.ImageBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying store.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Models names the encoders in use.
func (e *Engine) Models() store.Models {
	return store.Models{
		TextModel:  e.text.Model(),
		ImageModel: e.image.Model(),
	}
}

// Stats summarizes the store.
type Stats struct {
	Built    bool         `json:"built"`
	Records  int          `json:"records"`
	TextDim  int          `json:"text_dim"`
	ImageDim int          `json:"image_dim"`
	Models   store.Models `json:"models"`
}

// Stats returns the current store summary.
func (e *Engine) Stats() Stats {
	textDim, imageDim := e.store.Dimensions()
	return Stats{
		Built:    e.store.Built(),
		Records:  e.store.Len(),
		TextDim:  textDim,
		ImageDim: imageDim,
		Models:   e.Models(),
	}
}

// Record returns the metadata of one record.
func (e *Engine) Record(id store.RecordID) (store.Metadata, error) {
	return e.store.Metadata(id)
}

// Save persists the store to path, recording the encoder names.
func (e *Engine) Save(path string) error {
	return e.store.Save(path, e.Models())
}

// Close releases the encoders and the publisher.
func (e *Engine) Close() error {
	var first error
	for _, c := range []interface{ Close() error }{e.text, e.image, e.publisher} {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
