// Package dotdir manages the .figsearch/ and ~/.figsearch directories.
//
// The directory holds config.toml, the default persisted store and the
// ingestion ledger that remembers which metadata files were already ingested.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirName      = ".figsearch"
	storeDirName = "store"
)

// Manager resolves figsearch directories relative to the working directory
// and the user's home.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target resolves the .figsearch/ directory to use, as an absolute path:
// the override (created when missing), else ./.figsearch when present,
// else ~/.figsearch when present. With none of these it returns "".
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		return m.Init(overrideDir)
	}

	local, err := localDir()
	if err != nil {
		return "", err
	}
	if isDir(local) {
		return local, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	if global := filepath.Join(home, dirName); isDir(global) {
		return filepath.Abs(global)
	}
	return "", nil
}

// Init creates the override directory, or ./.figsearch without one, and
// returns its absolute path.
func (m *Manager) Init(overrideDir string) (string, error) {
	dir := overrideDir
	if dir == "" {
		var err error
		if dir, err = localDir(); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating figsearch directory %s: %w", dir, err)
	}
	return filepath.Abs(dir)
}

// StorePath is the default store directory inside the resolved target, or
// "" when nothing resolves.
func (m *Manager) StorePath(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir == "" {
		return "", err
	}
	return filepath.Join(dir, storeDirName), nil
}

func localDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	return filepath.Join(cwd, dirName), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
