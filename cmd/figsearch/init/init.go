// Package initcmder provides the init command for creating a .figsearch
// directory with a starting config.toml.
package initcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/figsearch/pkg/cliui"
	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/dotdir"
)

type initCommander struct {
	preset    string
	configDir string
	out       io.Writer
}

const initLongDesc string = `Initialize a new .figsearch/ directory in the current working directory.

Creates a local .figsearch/ directory that takes precedence over ~/.figsearch/
for configuration, the persisted store and the ingestion ledger. A config.toml
is written with defaults, or with the encoder settings of a preset:

  local    Feature hashing encoders, no model server needed
  ollama   Ollama text embeddings with an OpenAI-compatible CLIP server
  openai   OpenAI text embeddings with an OpenAI-compatible CLIP server

An existing config.toml is left untouched.

Examples:
  figsearch init
  figsearch init --preset local
  figsearch init --config-dir /srv/figsearch`

const initShortDesc string = "Initialize a local .figsearch/ directory"

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.preset, "preset", "", "Encoder preset (local, ollama, openai)")

	return cmd
}

func (c *initCommander) run() error {
	cfg := config.NewDefaultConfig()
	if c.preset != "" {
		var err error
		cfg, err = config.PresetConfig(c.preset)
		if err != nil {
			return err
		}
	}

	dir, err := dotdir.NewManager().Init(c.configDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(c.out, "  %s Already initialized: %s\n", cliui.WarnMark, dir)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "  %s Initialized figsearch directory: %s\n", cliui.SuccessMark, dir)
	if c.preset != "" {
		fmt.Fprintln(c.out, cliui.KeyValue("preset", c.preset))
	}
	fmt.Fprintln(c.out, cliui.KeyValue("text", describeEncoder(cfg.TextEmbedding)))
	fmt.Fprintln(c.out, cliui.KeyValue("image", describeEncoder(cfg.ImageEmbedding)))
	return nil
}

func describeEncoder(e config.EmbeddingConfig) string {
	s := e.Provider
	if e.Model != "" {
		s += " " + e.Model
	}
	if e.Dimensions > 0 {
		s += fmt.Sprintf(" (%d dims)", e.Dimensions)
	}
	return s
}
