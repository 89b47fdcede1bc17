// Package bootstrap assembles a retrieval engine from figsearch configuration.
package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/dotdir"
	embeddingutils "github.com/papercomputeco/figsearch/pkg/embeddings/utils"
	"github.com/papercomputeco/figsearch/pkg/eventstream"
	"github.com/papercomputeco/figsearch/pkg/eventstream/kafka"
	"github.com/papercomputeco/figsearch/pkg/eventstream/nop"
	"github.com/papercomputeco/figsearch/pkg/ingest"
	"github.com/papercomputeco/figsearch/pkg/retriever"
	"github.com/papercomputeco/figsearch/pkg/store"
	"github.com/papercomputeco/figsearch/pkg/textnorm"
	vectorutils "github.com/papercomputeco/figsearch/pkg/vector/utils"
)

// Event publisher providers.
const (
	EventsNop   = "nop"
	EventsKafka = "kafka"
)

// ErrNoStorePath is returned when no store directory can be resolved.
var ErrNoStorePath = errors.New("could not find a figsearch directory; run 'figsearch init' or pass --store")

// ResolveStorePath picks the store directory: an explicit path first, then
// the store directory inside the resolved .figsearch/ directory.
func ResolveStorePath(path, configDir string) (string, error) {
	if path = strings.TrimSpace(path); path != "" {
		return path, nil
	}

	dir, err := dotdir.NewManager().StorePath(configDir)
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", ErrNoStorePath
	}
	return dir, nil
}

// Runtime is an engine together with where it persists.
type Runtime struct {
	Engine    *retriever.Engine
	StorePath string

	// Report is set when an existing store was loaded.
	Report *store.LoadReport
}

// Save persists the engine's store to StorePath.
func (r *Runtime) Save() error {
	return r.Engine.Save(r.StorePath)
}

// Close releases the engine's encoders and publisher.
func (r *Runtime) Close() error {
	return r.Engine.Close()
}

// NewRuntime builds the encoders, the publisher and the record builder from
// cfg, loads the store at storePath when one exists and starts an empty one
// otherwise.
func NewRuntime(cfg *config.Config, storePath string, log *slog.Logger) (*Runtime, error) {
	text, err := embeddingutils.NewTextEmbedder(embedderOpts(cfg.TextEmbedding))
	if err != nil {
		return nil, fmt.Errorf("creating text embedder: %w", err)
	}

	image, err := embeddingutils.NewImageEmbedder(embedderOpts(cfg.ImageEmbedding))
	if err != nil {
		_ = text.Close()
		return nil, fmt.Errorf("creating image embedder: %w", err)
	}

	closeEncoders := func() {
		_ = text.Close()
		_ = image.Close()
	}

	factory, err := vectorutils.NewIndexFactory(cfg.Store.Index)
	if err != nil {
		closeEncoders()
		return nil, err
	}

	storeOpts := []store.Option{
		store.WithIndexFactory(factory),
		store.WithLogger(log),
	}

	var (
		st     *store.Store
		report *store.LoadReport
	)
	if store.Exists(storePath) {
		requested := store.Models{TextModel: text.Model(), ImageModel: image.Model()}
		st, report, err = store.Load(storePath, requested, storeOpts...)
		if err != nil {
			closeEncoders()
			return nil, fmt.Errorf("loading store %s: %w", storePath, err)
		}
	} else {
		log.Debug("no store on disk, starting empty", "path", storePath)
		st = store.New(storeOpts...)
	}

	publisher, err := NewPublisher(cfg.Events)
	if err != nil {
		closeEncoders()
		return nil, err
	}

	engine := retriever.New(st, text, image,
		retriever.WithBuilder(NewBuilder(cfg.Ingest, log)),
		retriever.WithPublisher(publisher),
		retriever.WithLogger(log),
	)

	return &Runtime{
		Engine:    engine,
		StorePath: storePath,
		Report:    report,
	}, nil
}

// NewBuilder creates the record builder for the ingest settings.
func NewBuilder(cfg config.IngestConfig, log *slog.Logger) *ingest.Builder {
	return ingest.NewBuilder(
		ingest.WithSurroundingCount(cfg.Surrounding),
		ingest.WithChunkSize(cfg.ChunkSize),
		ingest.WithChunkOverlap(cfg.ChunkOverlap),
		ingest.WithDropGarbled(cfg.DropGarbled, textnorm.GarbledOptions{}),
		ingest.WithLogger(log),
	)
}

// NewPublisher creates the ingest event publisher for the events settings.
func NewPublisher(cfg config.EventsConfig) (eventstream.Publisher, error) {
	switch cfg.Provider {
	case "", EventsNop:
		return nop.NewPublisher(), nil
	case EventsKafka:
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: cfg.Brokers,
			Topic:   cfg.Topic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Provider)
	}
}

// SearchParams converts the configured search defaults to engine parameters.
func SearchParams(cfg config.SearchConfig) retriever.Params {
	return retriever.Params{
		TopK:      cfg.TopK,
		KEach:     cfg.KEach,
		Alpha:     cfg.Alpha,
		BetaTitle: cfg.BetaTitle,
		BetaSur:   cfg.BetaSur,
	}
}

func embedderOpts(cfg config.EmbeddingConfig) *embeddingutils.NewEmbedderOpts {
	return &embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Provider,
		TargetURL:    cfg.Target,
		Model:        cfg.Model,
		APIKey:       cfg.APIKey,
		Dimensions:   int(cfg.Dimensions),
	}
}
