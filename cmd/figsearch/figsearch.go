// Package figsearchcmder
package figsearchcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/figsearch/cmd/figsearch/auth"
	configcmder "github.com/papercomputeco/figsearch/cmd/figsearch/config"
	ingestcmder "github.com/papercomputeco/figsearch/cmd/figsearch/ingest"
	initcmder "github.com/papercomputeco/figsearch/cmd/figsearch/init"
	inspectcmder "github.com/papercomputeco/figsearch/cmd/figsearch/inspect"
	searchcmder "github.com/papercomputeco/figsearch/cmd/figsearch/search"
	servecmder "github.com/papercomputeco/figsearch/cmd/figsearch/serve"
	statuscmder "github.com/papercomputeco/figsearch/cmd/figsearch/status"
	watchcmder "github.com/papercomputeco/figsearch/cmd/figsearch/watch"
	versioncmder "github.com/papercomputeco/figsearch/cmd/version"
)

const figsearchLongDesc string = `figsearch finds document figures by natural-language query.

Each figure is indexed through three channels: its title, the text around it
and the image itself. Queries recall candidates from every channel, rescore
them exactly and fuse the scores into one ranking.

Get started:
  figsearch init --preset local          Create a .figsearch/ directory
  figsearch ingest 'out/**/metadata.json' Index parsed documents
  figsearch search --local "loss curve"  Query the store
  figsearch serve                        Run the API and MCP server`

const figsearchShortDesc string = "figsearch - multi-channel figure retrieval"

func NewFigsearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "figsearch",
		Short:        figsearchShortDesc,
		Long:         figsearchLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .figsearch/ directory location")

	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(statuscmder.NewStatusCmd())
	cmd.AddCommand(inspectcmder.NewInspectCmd())
	cmd.AddCommand(watchcmder.NewWatchCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
