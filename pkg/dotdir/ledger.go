package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	ledgerFile = "ingested.json"
)

// Ledger records the metadata files already ingested into the store, so
// repeated ingest and watch runs do not append the same figures twice.
type Ledger struct {
	// Entries is keyed by the absolute metadata path.
	Entries map[string]LedgerEntry `json:"entries"`
}

// LedgerEntry describes one ingested metadata file.
type LedgerEntry struct {
	DocName    string    `json:"doc_name"`
	Records    int       `json:"records"`
	FirstID    int       `json:"first_id"`
	ModTime    time.Time `json:"mod_time"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Seen reports whether path was ingested with the given modification time.
func (l *Ledger) Seen(path string, modTime time.Time) bool {
	e, ok := l.Entries[path]
	return ok && e.ModTime.Equal(modTime)
}

// Record stores an entry for path.
func (l *Ledger) Record(path string, e LedgerEntry) {
	if l.Entries == nil {
		l.Entries = make(map[string]LedgerEntry)
	}
	l.Entries[path] = e
}

// LoadLedger loads the ledger from a target .figsearch/ingested.json.
// Returns an empty ledger if none exists yet.
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadLedger(overrideDir string) (*Ledger, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return &Ledger{Entries: map[string]LedgerEntry{}}, nil
	}

	data, err := os.ReadFile(filepath.Join(dir, ledgerFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Ledger{Entries: map[string]LedgerEntry{}}, nil
		}
		return nil, fmt.Errorf("reading ingestion ledger: %w", err)
	}

	ledger := &Ledger{}
	if err := json.Unmarshal(data, ledger); err != nil {
		return nil, fmt.Errorf("parsing ingestion ledger: %w", err)
	}
	if ledger.Entries == nil {
		ledger.Entries = map[string]LedgerEntry{}
	}

	return ledger, nil
}

// SaveLedger persists the ledger to a target .figsearch/ingested.json.
func (m *Manager) SaveLedger(ledger *Ledger, overrideDir string) error {
	if ledger == nil {
		return errors.New("cannot save nil ledger")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}
	if dir == "" {
		return errors.New("no .figsearch directory found, run 'figsearch init' or pass --config-dir")
	}

	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ingestion ledger: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, ledgerFile), data, 0o644); err != nil {
		return fmt.Errorf("writing ingestion ledger: %w", err)
	}

	return nil
}

// ClearLedger removes the ledger file.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearLedger(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil || dir == "" {
		return err
	}

	if err := os.Remove(filepath.Join(dir, ledgerFile)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing ingestion ledger: %w", err)
	}

	return nil
}
