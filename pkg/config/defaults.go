package config

const (
	defaultIndex = "flat"

	defaultTextProvider   = "ollama"
	defaultTextTarget     = "http://localhost:11434"
	defaultTextModel      = "embeddinggemma"
	defaultTextDimensions = 768

	defaultImageProvider = "openai"
	defaultImageTarget   = "http://localhost:8000/v1"
	defaultImageModel    = "clip-ViT-B-32"

	defaultSurrounding  = 3
	defaultChunkSize    = 20
	defaultChunkOverlap = 4

	defaultTopK      = 10
	defaultKEach     = 50
	defaultAlpha     = 0.6
	defaultBetaTitle = 0.7
	defaultBetaSur   = 0.3

	defaultAPIListen       = ":8081"
	defaultClientAPITarget = "http://localhost:8081"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "figsearch.ingest"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Store: StoreConfig{
			Index: defaultIndex,
		},
		TextEmbedding: EmbeddingConfig{
			Provider:   defaultTextProvider,
			Target:     defaultTextTarget,
			Model:      defaultTextModel,
			Dimensions: defaultTextDimensions,
		},
		ImageEmbedding: EmbeddingConfig{
			Provider: defaultImageProvider,
			Target:   defaultImageTarget,
			Model:    defaultImageModel,
		},
		Ingest: IngestConfig{
			Surrounding:  defaultSurrounding,
			ChunkSize:    defaultChunkSize,
			ChunkOverlap: defaultChunkOverlap,
		},
		Search: SearchConfig{
			TopK:      defaultTopK,
			KEach:     defaultKEach,
			Alpha:     defaultAlpha,
			BetaTitle: defaultBetaTitle,
			BetaSur:   defaultBetaSur,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
