// Package searchcmder provides the search command for querying figures.
package searchcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	apisearch "github.com/papercomputeco/figsearch/api/search"
	"github.com/papercomputeco/figsearch/cmd/figsearch/bootstrap"
	"github.com/papercomputeco/figsearch/pkg/cliui"
	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/utils"
)

type searchCommander struct {
	query     string
	local     bool
	asJSON    bool
	configDir string

	flags   config.Config
	cfg     *config.Config
	changed func(key string) bool
	logger *slog.Logger
	out    io.Writer
}

const searchLongDesc string = `Search the figure store with a natural-language query.

By default the query is sent to a running figsearch API server
(client.api_target, or --api-target). With --local the store is loaded in
process with the configured encoders instead.

Results are ranked by the fused score
  alpha * s_text + (1 - alpha) * s_img
where s_text mixes the title and surrounding-text scores with beta-title and
beta-sur.

Examples:
  figsearch search "training loss curve"
  figsearch search "architecture diagram" --top-k 3 --alpha 0.8
  figsearch search --local "confusion matrix" --json`

const searchShortDesc string = "Search figures"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			keys := append([]string{config.FlagAPITarget, config.FlagStorePath, config.FlagIndex}, bootstrap.SearchFlagKeys...)
			keys = append(keys, bootstrap.EncoderFlagKeys...)

			var err error
			cmder.cfg, err = bootstrap.LoadConfig(cmd, keys...)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.logger = bootstrap.NewLogger(cmd)
			cmder.out = cmd.OutOrStdout()
			cmder.changed = func(key string) bool {
				return cmd.Flags().Changed(config.Flags[key].Name)
			}
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&cmder.local, "local", false, "Load the store in process instead of calling the API server")
	cmd.Flags().BoolVar(&cmder.asJSON, "json", false, "Print the raw search output as JSON")

	f := &cmder.flags
	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &f.Client.APITarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagStorePath, &f.Store.Path)
	config.AddStringFlag(cmd, config.Flags, config.FlagIndex, &f.Store.Index)
	bootstrap.AddSearchFlags(cmd, f)
	bootstrap.AddEncoderFlags(cmd, f)

	return cmd
}

func (c *searchCommander) run(ctx context.Context) error {
	input := c.input()

	var (
		output *apisearch.SearchOutput
		err    error
	)
	if c.local {
		output, err = c.searchLocal(ctx, input)
	} else {
		output, err = SearchAPI(ctx, c.cfg.Client.APITarget, input)
	}
	if err != nil {
		return err
	}

	if c.asJSON {
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(output)
	}

	PrintResults(c.out, output)
	return nil
}

// input carries only the parameters given on the command line; the rest
// fall back to the defaults of whoever runs the search.
func (c *searchCommander) input() apisearch.SearchInput {
	s := c.cfg.Search
	in := apisearch.SearchInput{Query: c.query}
	if c.changed(config.FlagTopK) {
		in.TopK = &s.TopK
	}
	if c.changed(config.FlagKEach) {
		in.KEach = &s.KEach
	}
	if c.changed(config.FlagAlpha) {
		in.Alpha = &s.Alpha
	}
	if c.changed(config.FlagBetaTitle) {
		in.BetaTitle = &s.BetaTitle
	}
	if c.changed(config.FlagBetaSur) {
		in.BetaSur = &s.BetaSur
	}
	return in
}

func (c *searchCommander) searchLocal(ctx context.Context, input apisearch.SearchInput) (*apisearch.SearchOutput, error) {
	storePath, err := bootstrap.ResolveStorePath(c.cfg.Store.Path, c.configDir)
	if err != nil {
		return nil, err
	}

	rt, err := bootstrap.NewRuntime(c.cfg, storePath, c.logger)
	if err != nil {
		return nil, err
	}
	defer rt.Close()

	return apisearch.Search(ctx, rt.Engine, input, bootstrap.SearchParams(c.cfg.Search), c.logger)
}

// SearchAPI posts input to the figsearch API at apiTarget and returns the
// parsed output.
func SearchAPI(ctx context.Context, apiTarget string, input apisearch.SearchInput) (*apisearch.SearchOutput, error) {
	searchURL, err := url.Parse(apiTarget)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	searchURL.Path = strings.TrimSuffix(searchURL.Path, "/") + "/v1/search"

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to figsearch API at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("search request failed (HTTP %d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("search request failed (HTTP %d): %s", resp.StatusCode, string(data))
	}

	var output apisearch.SearchOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return &output, nil
}

// PrintResults renders ranked results for the terminal.
func PrintResults(w io.Writer, output *apisearch.SearchOutput) {
	if output.Count == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "\n%s %s\n\n",
		cliui.HeaderStyle.Render("Figures for:"),
		cliui.ValueStyle.Render(fmt.Sprintf("%q", output.Query)),
	)

	for i, r := range output.Results {
		fmt.Fprintf(w, "  %s  %s  %s\n",
			cliui.HeaderStyle.Render(fmt.Sprintf("#%d", i+1)),
			cliui.FormatScore(r.Score),
			cliui.StepStyle.Render(fmt.Sprintf("title %.3f  sur %.3f  img %.3f  (id %d)", r.STitle, r.SSur, r.SImg, r.ID)),
		)
		fmt.Fprintln(w, cliui.KeyValue("title", utils.Truncate(utils.SingleLine(r.FigureTitle), 72)))
		fmt.Fprintln(w, cliui.KeyValue("document", fmt.Sprintf("%s, page %d", r.DocName, r.Page)))
		fmt.Fprintln(w, cliui.KeyValue("image", r.ImagePath))
		if r.BestSurChunk != nil {
			fmt.Fprintln(w, cliui.KeyValue("context", utils.Truncate(utils.SingleLine(*r.BestSurChunk), 72)))
		}
		fmt.Fprintln(w)
	}
}
