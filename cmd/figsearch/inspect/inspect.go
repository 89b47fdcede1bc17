// Package inspectcmder provides the inspect command for viewing one figure
// record of the persisted store.
package inspectcmder

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/figsearch/cmd/figsearch/bootstrap"
	"github.com/papercomputeco/figsearch/pkg/cliui"
	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/logger"
	"github.com/papercomputeco/figsearch/pkg/store"
)

const inspectLongDesc string = `Show one figure record of the persisted store.

The record is rendered as markdown: title, source document and page, image
location, the surrounding paragraphs kept at ingestion and the chunks that
were embedded. Ids are the ones printed by search.

Examples:
  figsearch inspect 12
  figsearch inspect 12 --raw > figure-12.md
  figsearch inspect 12 --json`

const inspectShortDesc string = "Show a figure record"

type inspectCommander struct {
	id        int
	raw       bool
	asJSON    bool
	configDir string

	flags config.Config
	cfg   *config.Config
	out   io.Writer
}

func NewInspectCmd() *cobra.Command {
	cmder := &inspectCommander{}

	cmd := &cobra.Command{
		Use:   "inspect <id>",
		Short: inspectShortDesc,
		Long:  inspectLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, err = bootstrap.LoadConfig(cmd, config.FlagStorePath)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid record id %q: must be an integer", args[0])
			}
			cmder.id = id
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.out = cmd.OutOrStdout()
			return cmder.run()
		},
	}

	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the markdown without rendering it")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the record as JSON")
	config.AddStringFlag(cmd, config.Flags, config.FlagStorePath, &cmder.flags.Store.Path)

	return cmd
}

func (c *inspectCommander) run() error {
	storePath, err := bootstrap.ResolveStorePath(c.cfg.Store.Path, c.configDir)
	if err != nil {
		return err
	}
	if !store.Exists(storePath) {
		return fmt.Errorf("no store at %s: %w", storePath, store.ErrNotBuilt)
	}

	st, _, err := store.Load(storePath, store.Models{}, store.WithLogger(logger.Nop()))
	if err != nil {
		return fmt.Errorf("loading store: %w", err)
	}

	meta, err := st.Metadata(store.RecordID(c.id))
	if err != nil {
		return err
	}

	if c.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			ID int `json:"id"`
			store.Metadata
		}{c.id, meta})
	}

	md := Markdown(c.id, meta)
	if c.raw {
		_, err := io.WriteString(c.out, md)
		return err
	}

	rendered, _ := cliui.RenderMarkdown(md)
	_, err = io.WriteString(c.out, rendered)
	return err
}

// Markdown renders a record as a markdown document.
func Markdown(id int, m store.Metadata) string {
	var b strings.Builder

	title := m.FigureTitle
	if title == "" {
		title = "(untitled figure)"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("| field | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| id | %d |\n", id)
	fmt.Fprintf(&b, "| document | %s |\n", cell(m.DocName))
	fmt.Fprintf(&b, "| uid | `%s` |\n", m.UID)
	fmt.Fprintf(&b, "| page | %d |\n", m.Page)
	fmt.Fprintf(&b, "| image | `%s` |\n", m.ImagePath)
	if len(m.Coordinate) > 0 {
		coords := make([]string, len(m.Coordinate))
		for i, v := range m.Coordinate {
			coords[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		fmt.Fprintf(&b, "| coordinate | %s |\n", strings.Join(coords, ", "))
	}

	if len(m.SurTextList) > 0 {
		b.WriteString("\n## Surrounding text\n\n")
		for _, p := range m.SurTextList {
			fmt.Fprintf(&b, "> %s\n\n", strings.Join(strings.Fields(p), " "))
		}
	}

	if len(m.SurChunks) > 0 {
		b.WriteString("\n## Embedded chunks\n\n")
		for i, ch := range m.SurChunks {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.Join(strings.Fields(ch), " "))
		}
	}

	return b.String()
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
