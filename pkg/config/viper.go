package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/figsearch/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the FIGSEARCH_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (FIGSEARCH_API_LISTEN, FIGSEARCH_SEARCH_ALPHA, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("FIGSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes the layered viper view into a Config.
func FromViper(v *viper.Viper) *Config {
	brokers := v.GetStringSlice("events.brokers")
	if len(brokers) == 0 {
		brokers = nil
	}

	return &Config{
		Version: v.GetInt("version"),
		Store: StoreConfig{
			Path:  v.GetString("store.path"),
			Index: v.GetString("store.index"),
		},
		TextEmbedding: EmbeddingConfig{
			Provider:   v.GetString("text_embedding.provider"),
			Target:     v.GetString("text_embedding.target"),
			Model:      v.GetString("text_embedding.model"),
			Dimensions: v.GetUint("text_embedding.dimensions"),
		},
		ImageEmbedding: EmbeddingConfig{
			Provider:   v.GetString("image_embedding.provider"),
			Target:     v.GetString("image_embedding.target"),
			Model:      v.GetString("image_embedding.model"),
			Dimensions: v.GetUint("image_embedding.dimensions"),
		},
		Ingest: IngestConfig{
			Surrounding:  v.GetInt("ingest.surrounding"),
			ChunkSize:    v.GetInt("ingest.chunk_size"),
			ChunkOverlap: v.GetInt("ingest.chunk_overlap"),
			DropGarbled:  v.GetBool("ingest.drop_garbled"),
		},
		Search: SearchConfig{
			TopK:      v.GetInt("search.top_k"),
			KEach:     v.GetInt("search.k_each"),
			Alpha:     v.GetFloat64("search.alpha"),
			BetaTitle: v.GetFloat64("search.beta_title"),
			BetaSur:   v.GetFloat64("search.beta_sur"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  brokers,
			Topic:    v.GetString("events.topic"),
		},
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.index", d.Store.Index)

	v.SetDefault("text_embedding.provider", d.TextEmbedding.Provider)
	v.SetDefault("text_embedding.target", d.TextEmbedding.Target)
	v.SetDefault("text_embedding.model", d.TextEmbedding.Model)
	v.SetDefault("text_embedding.dimensions", d.TextEmbedding.Dimensions)

	v.SetDefault("image_embedding.provider", d.ImageEmbedding.Provider)
	v.SetDefault("image_embedding.target", d.ImageEmbedding.Target)
	v.SetDefault("image_embedding.model", d.ImageEmbedding.Model)
	v.SetDefault("image_embedding.dimensions", d.ImageEmbedding.Dimensions)

	v.SetDefault("ingest.surrounding", d.Ingest.Surrounding)
	v.SetDefault("ingest.chunk_size", d.Ingest.ChunkSize)
	v.SetDefault("ingest.chunk_overlap", d.Ingest.ChunkOverlap)
	v.SetDefault("ingest.drop_garbled", d.Ingest.DropGarbled)

	v.SetDefault("search.top_k", d.Search.TopK)
	v.SetDefault("search.k_each", d.Search.KEach)
	v.SetDefault("search.alpha", d.Search.Alpha)
	v.SetDefault("search.beta_title", d.Search.BetaTitle)
	v.SetDefault("search.beta_sur", d.Search.BetaSur)

	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("client.api_target", d.Client.APITarget)

	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}
