package config

import (
	"fmt"
	"strings"
)

// presets maps a preset name to the encoder settings it applies over the
// defaults. Everything else keeps its default.
var presets = map[string]func(c *Config){
	// Feature hashing runs in process with no model server.
	"local": func(c *Config) {
		c.TextEmbedding = EmbeddingConfig{Provider: "hashing", Dimensions: 256}
		c.ImageEmbedding = EmbeddingConfig{Provider: "hashing", Dimensions: 128}
	},
	"ollama": func(c *Config) {
		c.TextEmbedding = EmbeddingConfig{
			Provider:   "ollama",
			Target:     defaultTextTarget,
			Model:      defaultTextModel,
			Dimensions: defaultTextDimensions,
		}
	},
	"openai": func(c *Config) {
		c.TextEmbedding = EmbeddingConfig{
			Provider:   "openai",
			Target:     "https://api.openai.com/v1",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
		}
	},
}

// PresetConfig returns the defaults with the named encoder preset applied.
// Names are case insensitive.
func PresetConfig(name string) (*Config, error) {
	apply, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown preset: %q (available: %s)", name, strings.Join(ValidPresetNames(), ", "))
	}
	cfg := NewDefaultConfig()
	apply(cfg)
	return cfg, nil
}

// ValidPresetNames returns the recognized preset names.
func ValidPresetNames() []string {
	return []string{"local", "ollama", "openai"}
}
