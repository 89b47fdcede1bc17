// Package watchcmder provides the watch command for ingesting documents as
// they appear under a directory.
package watchcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/figsearch/cmd/figsearch/bootstrap"
	ingestcmder "github.com/papercomputeco/figsearch/cmd/figsearch/ingest"
	"github.com/papercomputeco/figsearch/pkg/cliui"
	"github.com/papercomputeco/figsearch/pkg/config"
)

const metadataFile = "metadata.json"

type watchCommander struct {
	root      string
	settle    time.Duration
	configDir string

	flags  config.Config
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

const watchLongDesc string = `Watch a directory and ingest documents as they appear.

Every metadata.json below the directory is ingested when it is created or
rewritten, with its images looked up next to it. Documents already present
are ingested once at start unless the ingestion ledger holds them unchanged.
The store is saved after each batch.

Examples:
  figsearch watch out/
  figsearch watch out/ --settle 5s`

const watchShortDesc string = "Ingest documents as they appear"

// flagKeys are the registry flags watch layers over the config file.
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

func NewWatchCmd() *cobra.Command {
	cmder := &watchCommander{}

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: watchShortDesc,
		Long:  watchLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, err = bootstrap.LoadConfig(cmd, append(flagKeys, bootstrap.EncoderFlagKeys...)...)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.root = args[0]
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			var (
				logs io.Closer
				err  error
			)
			cmder.logger, logs, err = bootstrap.NewServiceLogger(cmd)
			if err != nil {
				return err
			}
			defer logs.Close()
			cmder.out = cmd.OutOrStdout()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&cmder.settle, "settle", 2*time.Second, "Quiet period before a batch of changes is ingested")

	bootstrap.AddLogFlags(cmd)

	f := &cmder.flags
	config.AddStringFlag(cmd, config.Flags, config.FlagStorePath, &f.Store.Path)
	config.AddStringFlag(cmd, config.Flags, config.FlagIndex, &f.Store.Index)
	config.AddIntFlag(cmd, config.Flags, config.FlagSurrounding, &f.Ingest.Surrounding)
	config.AddIntFlag(cmd, config.Flags, config.FlagChunkSize, &f.Ingest.ChunkSize)
	config.AddIntFlag(cmd, config.Flags, config.FlagChunkOverlap, &f.Ingest.ChunkOverlap)
	config.AddBoolFlag(cmd, config.Flags, config.FlagDropGarbled, &f.Ingest.DropGarbled)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsProv, &f.Events.Provider)
	config.AddStringSliceFlag(cmd, config.Flags, config.FlagEventsBroker, &f.Events.Brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventsTopic, &f.Events.Topic)
	bootstrap.AddEncoderFlags(cmd, f)

	return cmd
}

func (c *watchCommander) run(ctx context.Context) error {
	info, err := os.Stat(c.root)
	if err != nil {
		return fmt.Errorf("reading %s: %w", c.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", c.root)
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
		Logger:    c.logger,
	}

	ingestBatch := func(ctx context.Context, paths []string) error {
		report, err := ingester.Ingest(ctx, paths)
		if err != nil {
			return err
		}
		if report == nil {
			return nil
		}
		fmt.Fprintf(c.out, "  %s Ingested %d figures from %d documents (store: %d records)\n",
			cliui.SuccessMark, report.Records, report.Documents, rt.Engine.Stats().Records)
		for _, skip := range report.Skipped {
			fmt.Fprintf(c.out, "  %s %s/%s: %s\n", cliui.WarnMark, skip.DocName, skip.ImageName, skip.Reason)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	existing, err := ingestcmder.ExpandPatterns([]string{c.root})
	if err != nil && !errors.Is(err, ingestcmder.ErrNoDocuments) {
		return err
	}
	if len(existing) > 0 {
		if err := ingestBatch(ctx, existing); err != nil {
			return err
		}
	}

	c.logger.Info("watching for documents", "dir", c.root, "store", storePath)

	w := &Watcher{
		Root:     c.root,
		FileName: metadataFile,
		Settle:   c.settle,
		OnBatch:  ingestBatch,
		Logger:   c.logger,
	}
	return w.Run(ctx)
}
