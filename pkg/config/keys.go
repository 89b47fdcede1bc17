package config

import (
	"fmt"
	"strconv"
	"strings"
)

// key is one user facing dotted name for a Config field, as used by
// "figsearch config get/set" and the viper layer.
type key struct {
	name string
	get  func(c *Config) string
	set  func(c *Config, v string) error
}

func text(name string, field func(c *Config) *string) key {
	return key{
		name: name,
		get:  func(c *Config) string { return *field(c) },
		set:  func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func count(name string, field func(c *Config) *int) key {
	return key{
		name: name,
		get:  func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			switch {
			case err != nil:
				return fmt.Errorf("invalid value for %s: %w", name, err)
			case n < 0:
				return fmt.Errorf("invalid value for %s: must not be negative", name)
			}
			*field(c) = n
			return nil
		},
	}
}

func weight(name string, field func(c *Config) *float64) key {
	return key{
		name: name,
		get:  func(c *Config) string { return strconv.FormatFloat(*field(c), 'g', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = f
			return nil
		},
	}
}

// width prints an unset (zero) dimension as the empty string.
func width(name string, field func(c *Config) *uint) key {
	return key{
		name: name,
		get: func(c *Config) string {
			if *field(c) == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(*field(c)), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = uint(n)
			return nil
		},
	}
}

func flag(name string, field func(c *Config) *bool) key {
	return key{
		name: name,
		get:  func(c *Config) string { return strconv.FormatBool(*field(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*field(c) = b
			return nil
		},
	}
}

// list reads and writes a comma separated value, dropping empty entries.
func list(name string, field func(c *Config) *[]string) key {
	return key{
		name: name,
		get:  func(c *Config) string { return strings.Join(*field(c), ",") },
		set: func(c *Config, v string) error {
			var out []string
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
			*field(c) = out
			return nil
		},
	}
}

// keys lists every supported key in config.toml section order.
var keys = []key{
	text("store.path", func(c *Config) *string { return &c.Store.Path }),
	text("store.index", func(c *Config) *string { return &c.Store.Index }),

	text("text_embedding.provider", func(c *Config) *string { return &c.TextEmbedding.Provider }),
	text("text_embedding.target", func(c *Config) *string { return &c.TextEmbedding.Target }),
	text("text_embedding.model", func(c *Config) *string { return &c.TextEmbedding.Model }),
	width("text_embedding.dimensions", func(c *Config) *uint { return &c.TextEmbedding.Dimensions }),

	text("image_embedding.provider", func(c *Config) *string { return &c.ImageEmbedding.Provider }),
	text("image_embedding.target", func(c *Config) *string { return &c.ImageEmbedding.Target }),
	text("image_embedding.model", func(c *Config) *string { return &c.ImageEmbedding.Model }),
	width("image_embedding.dimensions", func(c *Config) *uint { return &c.ImageEmbedding.Dimensions }),

	count("ingest.surrounding", func(c *Config) *int { return &c.Ingest.Surrounding }),
	count("ingest.chunk_size", func(c *Config) *int { return &c.Ingest.ChunkSize }),
	count("ingest.chunk_overlap", func(c *Config) *int { return &c.Ingest.ChunkOverlap }),
	flag("ingest.drop_garbled", func(c *Config) *bool { return &c.Ingest.DropGarbled }),

	count("search.top_k", func(c *Config) *int { return &c.Search.TopK }),
	count("search.k_each", func(c *Config) *int { return &c.Search.KEach }),
	weight("search.alpha", func(c *Config) *float64 { return &c.Search.Alpha }),
	weight("search.beta_title", func(c *Config) *float64 { return &c.Search.BetaTitle }),
	weight("search.beta_sur", func(c *Config) *float64 { return &c.Search.BetaSur }),

	text("api.listen", func(c *Config) *string { return &c.API.Listen }),
	text("client.api_target", func(c *Config) *string { return &c.Client.APITarget }),

	text("events.provider", func(c *Config) *string { return &c.Events.Provider }),
	list("events.brokers", func(c *Config) *[]string { return &c.Events.Brokers }),
	text("events.topic", func(c *Config) *string { return &c.Events.Topic }),
}

func lookupKey(name string) (key, bool) {
	for _, k := range keys {
		if k.name == name {
			return k, true
		}
	}
	return key{}, false
}

// ValidConfigKeys returns every supported key in config.toml section order.
func ValidConfigKeys() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}

// IsValidConfigKey reports whether name is a supported key.
func IsValidConfigKey(name string) bool {
	_, ok := lookupKey(name)
	return ok
}
