package config

// Config represents the persistent figsearch configuration stored as
// config.toml in the .figsearch/ directory.
type Config struct {
	Version        int             `toml:"version"`
	Store          StoreConfig     `toml:"store"`
	TextEmbedding  EmbeddingConfig `toml:"text_embedding"`
	ImageEmbedding EmbeddingConfig `toml:"image_embedding"`
	Ingest         IngestConfig    `toml:"ingest"`
	Search         SearchConfig    `toml:"search"`
	API            APIConfig       `toml:"api"`
	Client         ClientConfig    `toml:"client"`
	Events         EventsConfig    `toml:"events"`
}

// StoreConfig locates the persisted store directory and picks the index kind.
// An empty Path resolves to <dotdir>/store.
type StoreConfig struct {
	Path  string `toml:"path,omitempty"`
	Index string `toml:"index,omitempty"`
}

// EmbeddingConfig holds embedding provider settings for one encoder.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`

	// APIKey is resolved from credentials.toml or the environment at load
	// time and never written to config.toml.
	APIKey string `toml:"-"`
}

// IngestConfig holds record building settings.
type IngestConfig struct {
	Surrounding  int  `toml:"surrounding"`
	ChunkSize    int  `toml:"chunk_size"`
	ChunkOverlap int  `toml:"chunk_overlap"`
	DropGarbled  bool `toml:"drop_garbled"`
}

// SearchConfig holds the default fusion parameters for queries.
type SearchConfig struct {
	TopK      int     `toml:"top_k"`
	KEach     int     `toml:"k_each"`
	Alpha     float64 `toml:"alpha"`
	BetaTitle float64 `toml:"beta_title"`
	BetaSur   float64 `toml:"beta_sur"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running
// figsearch API server. Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// EventsConfig selects where ingest events are published.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}
