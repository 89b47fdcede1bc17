// Package configcmder provides the config command for managing persistent
// figsearch configuration stored in the .figsearch/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/figsearch/pkg/cliui"
	"github.com/papercomputeco/figsearch/pkg/config"
)

const configLongDesc string = `Manage persistent figsearch configuration.

Configuration is stored as config.toml in the .figsearch/ directory and
provides default values for command flags. Environment variables
(FIGSEARCH_SEARCH_ALPHA, ...) override the file and CLI flags override both.

Keys use dotted notation matching the TOML section structure:
  store.path, store.index,
  text_embedding.provider, text_embedding.target, text_embedding.model,
  text_embedding.dimensions, image_embedding.* (same fields),
  ingest.surrounding, ingest.chunk_size, ingest.chunk_overlap,
  ingest.drop_garbled,
  search.top_k, search.k_each, search.alpha, search.beta_title,
  search.beta_sur,
  api.listen, client.api_target,
  events.provider, events.brokers, events.topic

Use subcommands to get, set, or list configuration values:
  figsearch config set <key> <value>    Set a configuration value
  figsearch config get <key>            Get a configuration value
  figsearch config list                 List all configuration values

Examples:
  figsearch config set search.alpha 0.8
  figsearch config set text_embedding.model nomic-embed-text
  figsearch config get search.alpha
  figsearch config list`

const configShortDesc string = "Manage persistent figsearch configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// completeKeys offers config keys for the first argument.
func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// unknownKey reports key with the list of valid keys.
func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

// printTarget announces which config file a command works on.
func printTarget(w io.Writer, target string) {
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.LabelStyle.Render("Config file:"),
			cliui.StepStyle.Render(target),
		)
		return
	}
	fmt.Fprintf(w, "\n  %s\n\n", cliui.StepStyle.Render("No config file found. Using defaults."))
}
