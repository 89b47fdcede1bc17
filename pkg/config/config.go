package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/figsearch/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// CurrentV is the only config.toml version this build reads.
	CurrentV = 0
)

// ErrNoTarget is returned when saving without a resolved .figsearch/ directory.
var ErrNoTarget = errors.New("no .figsearch directory to save config in")

// Configer reads and writes config.toml in a resolved .figsearch/ directory.
type Configer struct {
	path string
}

// NewConfiger resolves the .figsearch/ directory from override (or the
// usual lookup when empty). Without one, loads return defaults and saves
// fail with ErrNoTarget.
func NewConfiger(override string) (*Configer, error) {
	dir, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return &Configer{}, nil
	}

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return &Configer{path: path}, nil
}

// GetTarget is the config.toml path, or "" when none was resolved.
func (c *Configer) GetTarget() string {
	return c.path
}

// LoadConfig decodes config.toml over NewDefaultConfig, so absent keys keep
// their default and explicit zeros (alpha = 0.0) are honored. A missing
// file yields the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.path == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return NewDefaultConfig(), nil
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return ParseConfigTOML(data)
}

// SaveConfig writes cfg to config.toml through a temp file and a rename.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}
	if c.path == "" {
		return ErrNoTarget
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SetConfigValue parses value for key and saves the updated config.
func (c *Configer) SetConfigValue(name, value string) error {
	k, ok := lookupKey(name)
	if !ok {
		return fmt.Errorf("unknown config key: %q", name)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}
	if err := k.set(cfg, value); err != nil {
		return err
	}
	return c.SaveConfig(cfg)
}

// GetConfigValue returns the printed form of key from the loaded config.
func (c *Configer) GetConfigValue(name string) (string, error) {
	k, ok := lookupKey(name)
	if !ok {
		return "", fmt.Errorf("unknown config key: %q", name)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}
	return k.get(cfg), nil
}

// ParseConfigTOML decodes data over NewDefaultConfig and rejects any
// version other than CurrentV.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}
	if cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}
	return cfg, nil
}
