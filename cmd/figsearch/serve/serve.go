// Package servecmder provides the serve command for running the figsearch
// API and MCP server.
package servecmder

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/figsearch/api"
	"github.com/papercomputeco/figsearch/cmd/figsearch/bootstrap"
	"github.com/papercomputeco/figsearch/pkg/config"
)

type serveCommander struct {
	noMCP     bool
	configDir string

	flags  config.Config
	cfg    *config.Config
	logger *slog.Logger
}

const serveLongDesc string = `Run the figsearch API server.

Loads the store (or starts an empty one) and serves:
  GET  /ping              Health check
  GET  /v1/stats          Store summary
  GET  /v1/search         Search with query parameters
  POST /v1/search         Search with a JSON body
  GET  /v1/records/:id    One figure record
  POST /v1/ingest         Ingest documents; the store is saved afterwards
  /mcp                    MCP tools search_figures and get_figure

Examples:
  figsearch serve
  figsearch serve --listen :9090 --alpha 0.8
  figsearch serve --events-provider kafka --events-brokers localhost:9092`

const serveShortDesc string = "Run the figsearch API server"

// flagKeys are the registry flags serve layers over the config file.
var flagKeys = []string{
	config.FlagAPIListen,
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

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			keys := append(flagKeys, bootstrap.EncoderFlagKeys...)
			keys = append(keys, bootstrap.SearchFlagKeys...)

			var err error
			cmder.cfg, err = bootstrap.LoadConfig(cmd, keys...)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			return cmder.run()
		},
	}

	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP tools")

	bootstrap.AddLogFlags(cmd)

	f := &cmder.flags
	config.AddStringFlag(cmd, config.Flags, config.FlagAPIListen, &f.API.Listen)
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
	bootstrap.AddSearchFlags(cmd, f)

	return cmd
}

func (c *serveCommander) run() error {
	storePath, err := bootstrap.ResolveStorePath(c.cfg.Store.Path, c.configDir)
	if err != nil {
		return err
	}

	rt, err := bootstrap.NewRuntime(c.cfg, storePath, c.logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	stats := rt.Engine.Stats()
	c.logger.Info("store ready",
		"path", storePath,
		"records", stats.Records,
		"text_model", stats.Models.TextModel,
		"image_model", stats.Models.ImageModel,
	)

	server, err := api.NewServer(api.Config{
		ListenAddr: c.cfg.API.Listen,
		StorePath:  storePath,
		Defaults:   bootstrap.SearchParams(c.cfg.Search),
		NoMCP:      c.noMCP,
	}, rt.Engine, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}
