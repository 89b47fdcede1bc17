// Package ingestcmder provides the ingest command for adding parsed documents
// to the figure store.
package ingestcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/figsearch/cmd/figsearch/bootstrap"
	"github.com/papercomputeco/figsearch/pkg/cliui"
	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/retriever"
)

// metadataFile is the file name searched for when a directory is given.
const metadataFile = "metadata.json"

// ErrNoDocuments is returned when no pattern matches a metadata file.
var ErrNoDocuments = errors.New("no metadata files matched")

type ingestCommander struct {
	patterns  []string
	imagesDir string
	docName   string
	force     bool
	configDir string

	flags  config.Config
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

// flagKeys are the registry flags ingest layers over the config file.
var flagKeys = []string{
	config.FlagStorePath,
	config.FlagIndex,
	config.FlagSurrounding,
	config.FlagChunkSize,
	config.FlagChunkOverlap,
	config.FlagDropGarbled,
	config.FlagEventsProv,
	config.FlagEventsBroker,
	config.FlagEventsTopic,
}

const ingestLongDesc string = `Ingest parsed documents into the figure store.

Each argument is a metadata JSON path, a doublestar glob or a directory that
is searched recursively for metadata.json files. Figure images are looked up
next to each metadata file unless --images-dir is given.

All matched documents are embedded and appended as one batch, then the store
is saved. Files recorded in the ingestion ledger with an unchanged
modification time are skipped; use --force to ingest them again.

Examples:
  figsearch ingest out/paper/metadata.json
  figsearch ingest 'out/**/metadata.json'
  figsearch ingest out/ --drop-garbled
  figsearch ingest scan.json --images-dir scans/imgs --doc-name "Scan 12"`

const ingestShortDesc string = "Ingest documents into the figure store"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <path|glob|dir>...",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, err = bootstrap.LoadConfig(cmd, append(flagKeys, bootstrap.EncoderFlagKeys...)...)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.patterns = args
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.logger = bootstrap.NewLogger(cmd)
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&cmder.imagesDir, "images-dir", "", "Directory holding the figure images (default: next to each metadata file)")
	cmd.Flags().StringVar(&cmder.docName, "doc-name", "", "Override the document name (single document only)")
	cmd.Flags().BoolVarP(&cmder.force, "force", "f", false, "Ingest files already recorded in the ledger")

	f := &cmder.flags
	config.AddStringFlag(cmd, config.Flags, config.FlagStorePath, &f.Store.Path)
	config.AddStringFlag(cmd, config.Flags, config.FlagIndex, &f.Store.Index)
	config.AddIntFlag(cmd, config.Flags, config.FlagSurrounding, &f.Ingest.Surrounding)
	config.AddIntFlag(cmd, config.Flags, config.FlagChunkSize, &f.Ingest.ChunkSize)
	config.AddIntFlag(cmd, config.Flags, config.FlagChunkOverlap, &f.Ingest.ChunkOverlap)
	config.AddBoolFlag(cmd, config.Flags, config.FlagDropGarbled, &f.Ingest.DropGarbled)
	bootstrap.AddEncoderFlags(cmd, f)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsProv, &f.Events.Provider)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagEventsBroker, &f.Events.Brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &f.Events.Topic)

	return cmd
}

func (c *ingestCommander) run(ctx context.Context) error {
	paths, err := ExpandPatterns(c.patterns)
	if err != nil {
		return err
	}

	storePath, err := bootstrap.ResolveStorePath(c.cfg.Store.Path, c.configDir)
	if err != nil {
		return err
	}

	rt, err := bootstrap.NewRuntime(c.cfg, storePath, c.logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	ingester := &bootstrap.Ingester{
		Runtime:   rt,
		ConfigDir: c.configDir,
		ImagesDir: c.imagesDir,
		DocName:   c.docName,
		Force:     c.force,
		Logger:    c.logger,
	}

	var report *retriever.IngestReport
	err = cliui.Step(c.out, fmt.Sprintf("Ingesting %d documents", len(paths)), func() error {
		var err error
		report, err = ingester.Ingest(ctx, paths)
		return err
	})
	if err != nil {
		return err
	}
	if report == nil {
		fmt.Fprintf(c.out, "  %s All %d documents already ingested\n", cliui.SuccessMark, len(paths))
		return nil
	}

	c.printReport(report, storePath)
	return nil
}

func (c *ingestCommander) printReport(report *retriever.IngestReport, storePath string) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, cliui.KeyValue("documents", fmt.Sprint(report.Documents)))
	fmt.Fprintln(c.out, cliui.KeyValue("records", fmt.Sprint(report.Records)))
	if report.Records > 0 {
		fmt.Fprintln(c.out, cliui.KeyValue("ids", fmt.Sprintf("%d..%d", report.FirstID, int(report.FirstID)+report.Records-1)))
	}
	fmt.Fprintln(c.out, cliui.KeyValue("store", storePath))

	for _, skip := range report.Skipped {
		fmt.Fprintf(c.out, "  %s %s/%s: %s\n", cliui.WarnMark, skip.DocName, skip.ImageName, skip.Reason)
	}
	fmt.Fprintln(c.out)
}

// ExpandPatterns resolves paths, doublestar globs and directories into a
// sorted, de-duplicated list of absolute metadata file paths.
func ExpandPatterns(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) error {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if !seen[abs] {
			seen[abs] = true
			out = append(out, abs)
		}
		return nil
	}

	for _, pattern := range patterns {
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			pattern = filepath.Join(pattern, "**", metadataFile)
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err != nil || info.IsDir() {
				continue
			}
			if err := add(m); err != nil {
				return nil, err
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoDocuments, patterns)
	}
	sort.Strings(out)
	return out, nil
}
