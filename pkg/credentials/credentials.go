// Package credentials keeps embedding provider API keys in credentials.toml
// inside the .figsearch/ directory, outside of config.toml.
package credentials

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/figsearch/pkg/dotdir"
)

const (
	credentialsFile = "credentials.toml"

	currentVersion = 0
)

// ErrNoDirectory is returned when saving without a .figsearch/ directory.
var ErrNoDirectory = errors.New("no figsearch directory; run 'figsearch init' first")

// providers lists the embedding providers that authenticate with a key.
var providers = []string{"openai"}

// Store reads and writes credentials.toml.
type Store struct {
	path string
}

// NewStore resolves credentials.toml in the override directory, or in the
// .figsearch/ directory found by the usual lookup. A store without a
// directory loads empty and refuses to save.
func NewStore(override string) (*Store, error) {
	dir, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return &Store{}, nil
	}
	return &Store{path: filepath.Join(dir, credentialsFile)}, nil
}

// Path returns the credentials file location, empty when none resolved.
func (s *Store) Path() string {
	return s.path
}

// Load reads the file. A missing file loads as empty.
func (s *Store) Load() (*File, error) {
	empty := &File{Version: currentVersion, Keys: map[string]KeyItem{}}
	if s.path == "" {
		return empty, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}

	f := &File{}
	if err := toml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	if f.Version != currentVersion {
		return nil, fmt.Errorf("unsupported credentials version %d (expected %d)", f.Version, currentVersion)
	}
	if f.Keys == nil {
		f.Keys = map[string]KeyItem{}
	}
	return f, nil
}

// Save writes f with 0600 permissions.
func (s *Store) Save(f *File) error {
	if f == nil {
		return errors.New("cannot save nil credentials")
	}
	if s.path == "" {
		return ErrNoDirectory
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(s.path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}

// Set stores key for provider.
func (s *Store) Set(provider, key string) error {
	f, err := s.Load()
	if err != nil {
		return err
	}
	f.Keys[provider] = KeyItem{APIKey: key}
	return s.Save(f)
}

// Get returns the stored key for provider, or "" when none is stored.
func (s *Store) Get(provider string) (string, error) {
	f, err := s.Load()
	if err != nil {
		return "", err
	}
	return f.Keys[provider].APIKey, nil
}

// Remove deletes the stored key for provider.
func (s *Store) Remove(provider string) error {
	f, err := s.Load()
	if err != nil {
		return err
	}
	if _, ok := f.Keys[provider]; !ok {
		return nil
	}
	delete(f.Keys, provider)
	return s.Save(f)
}

// Stored returns the providers with a stored key, sorted.
func (s *Store) Stored() ([]string, error) {
	f, err := s.Load()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(f.Keys))
	for name := range f.Keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Lookup returns the key an encoder for provider should use. The
// FIGSEARCH_<PROVIDER>_API_KEY environment variable wins over the stored
// key. Providers that need no key get "".
func (s *Store) Lookup(provider string) (string, error) {
	if !IsSupportedProvider(provider) {
		return "", nil
	}
	if key := os.Getenv(EnvVar(provider)); key != "" {
		return key, nil
	}
	return s.Get(provider)
}

// EnvVar names the environment variable that overrides provider's stored key.
func EnvVar(provider string) string {
	return "FIGSEARCH_" + strings.ToUpper(provider) + "_API_KEY"
}

// SupportedProviders returns the providers that take an API key.
func SupportedProviders() []string {
	return slices.Clone(providers)
}

// IsSupportedProvider reports whether provider takes an API key.
func IsSupportedProvider(provider string) bool {
	return slices.Contains(providers, provider)
}
