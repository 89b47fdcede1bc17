// Package statuscmder provides the status command for summarizing the
// figsearch directory and its persisted store.
package statuscmder

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/figsearch/cmd/figsearch/bootstrap"
	"github.com/papercomputeco/figsearch/pkg/cliui"
	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/dotdir"
	"github.com/papercomputeco/figsearch/pkg/logger"
	"github.com/papercomputeco/figsearch/pkg/store"
)

const statusLongDesc string = `Show the state of the figsearch directory.

Reads the local .figsearch/ directory (or ~/.figsearch/) and reports the
config in use, the persisted store with its record count, vector widths and
encoder names, and how many documents the ingestion ledger holds.

Examples:
  figsearch status
  figsearch status --store /data/figures`

const statusShortDesc string = "Show store and configuration state"

type statusCommander struct {
	configDir string
	flags     config.Config
	cfg       *config.Config
	out       io.Writer
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, err = bootstrap.LoadConfig(cmd, config.FlagStorePath)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagStorePath, &cmder.flags.Store.Path)

	return cmd
}

func (c *statusCommander) run() error {
	ddm := dotdir.NewManager()
	dir, err := ddm.Target(c.configDir)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out)
	if dir == "" {
		fmt.Fprintf(c.out, "  %s No figsearch directory. Run 'figsearch init' to create one.\n", cliui.WarnMark)
	} else {
		fmt.Fprintln(c.out, cliui.KeyValue("directory", dir))
	}
	fmt.Fprintln(c.out, cliui.KeyValue("text", c.cfg.TextEmbedding.Provider+" "+c.cfg.TextEmbedding.Model))
	fmt.Fprintln(c.out, cliui.KeyValue("image", c.cfg.ImageEmbedding.Provider+" "+c.cfg.ImageEmbedding.Model))

	storePath, err := bootstrap.ResolveStorePath(c.cfg.Store.Path, c.configDir)
	if errors.Is(err, bootstrap.ErrNoStorePath) {
		fmt.Fprintln(c.out)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, cliui.KeyValue("store", storePath))

	if !store.Exists(storePath) {
		fmt.Fprintf(c.out, "\n  %s Store not built yet. Ingest documents with 'figsearch ingest'.\n\n", cliui.WarnMark)
		return nil
	}

	_, report, err := store.Load(storePath, store.Models{}, store.WithLogger(logger.Nop()))
	if err != nil {
		fmt.Fprintf(c.out, "  %s %v\n\n", cliui.FailMark, err)
		return fmt.Errorf("loading store: %w", err)
	}
	PrintReport(c.out, report)

	ledger, err := ddm.LoadLedger(c.configDir)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, cliui.KeyValue("ledger", fmt.Sprintf("%d documents", len(ledger.Entries))))
	fmt.Fprintln(c.out)
	return nil
}

// PrintReport renders a store load report.
func PrintReport(w io.Writer, report *store.LoadReport) {
	fmt.Fprintf(w, "\n  %s Store built\n", cliui.SuccessMark)
	fmt.Fprintln(w, cliui.KeyValue("records", fmt.Sprint(report.Records)))
	fmt.Fprintln(w, cliui.KeyValue("widths", fmt.Sprintf("text %d, image %d", report.TextDim, report.ImageDim)))
	fmt.Fprintln(w, cliui.KeyValue("built with", report.Models.TextModel+" / "+report.Models.ImageModel))
}
