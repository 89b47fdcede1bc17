package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/papercomputeco/figsearch/pkg/dotdir"
	"github.com/papercomputeco/figsearch/pkg/ingest"
	"github.com/papercomputeco/figsearch/pkg/retriever"
)

// Ingester feeds metadata files into a Runtime, consulting the ingestion
// ledger so unchanged files are not appended twice.
type Ingester struct {
	Runtime   *Runtime
	ConfigDir string

	// ImagesDir overrides the directory of each metadata file.
	ImagesDir string

	// DocName overrides the document name; only valid for one file.
	DocName string

	// Force ingests files the ledger already holds.
	Force bool

	Logger *slog.Logger
}

// Ingest appends every pending file in paths as one batch, saves the store
// when records were added and records the files in the ledger. It returns a
// nil report when nothing was pending.
func (i *Ingester) Ingest(ctx context.Context, paths []string) (*retriever.IngestReport, error) {
	if i.DocName != "" && len(paths) > 1 {
		return nil, fmt.Errorf("a document name needs exactly one document, %d given", len(paths))
	}

	ddm := dotdir.NewManager()
	ledger, err := ddm.LoadLedger(i.ConfigDir)
	if err != nil {
		return nil, err
	}

	sources, modTimes, err := i.pending(paths, ledger)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, nil
	}

	report, err := i.Runtime.Engine.Ingest(ctx, sources...)
	if err != nil {
		return nil, err
	}
	if report.Records > 0 {
		if err := i.Runtime.Save(); err != nil {
			return nil, fmt.Errorf("saving store: %w", err)
		}
	}

	now := time.Now().UTC()
	for _, src := range report.Sources {
		ledger.Record(src.MetadataPath, dotdir.LedgerEntry{
			DocName:    src.DocName,
			Records:    src.Records,
			FirstID:    int(src.FirstID),
			ModTime:    modTimes[src.MetadataPath],
			IngestedAt: now,
		})
	}
	if err := ddm.SaveLedger(ledger, i.ConfigDir); err != nil {
		i.Logger.Warn("saving ingestion ledger failed", "error", err)
	}

	return report, nil
}

// pending turns paths into sources, dropping those the ledger already holds
// with the same modification time unless forced.
func (i *Ingester) pending(paths []string, ledger *dotdir.Ledger) ([]ingest.Source, map[string]time.Time, error) {
	sources := make([]ingest.Source, 0, len(paths))
	modTimes := make(map[string]time.Time, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", path, err)
		}
		modTime := info.ModTime().UTC()
		if !i.Force && ledger.Seen(path, modTime) {
			i.Logger.Debug("skipping already ingested document", "path", path)
			continue
		}

		imagesDir := i.ImagesDir
		if imagesDir == "" {
			imagesDir = filepath.Dir(path)
		}
		sources = append(sources, ingest.Source{
			MetadataPath: path,
			ImagesDir:    imagesDir,
			DocName:      i.DocName,
		})
		modTimes[path] = modTime
	}
	return sources, modTimes, nil
}
