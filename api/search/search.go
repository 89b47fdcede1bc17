// Package search provides shared search types and logic for figure retrieval.
// It is used by both the REST API endpoint and the MCP server tool.
package search

import (
	"context"
	"log/slog"

	"github.com/papercomputeco/figsearch/pkg/retriever"
)

// Searcher answers fused figure queries.
type Searcher interface {
	Search(ctx context.Context, query string, params retriever.Params) ([]retriever.Result, error)
}

// SearchInput represents the input arguments for a search request. Unset
// parameters fall back to the server defaults.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"the search query describing the figure to find"`
	TopK      *int     `json:"top_k,omitempty" jsonschema:"number of results to return"`
	KEach     *int     `json:"k_each,omitempty" jsonschema:"candidates recalled from each channel"`
	Alpha     *float64 `json:"alpha,omitempty" jsonschema:"weight of text similarity against image similarity, in [0, 1]"`
	BetaTitle *float64 `json:"beta_title,omitempty" jsonschema:"weight of the figure title inside text similarity"`
	BetaSur   *float64 `json:"beta_sur,omitempty" jsonschema:"weight of the surrounding text inside text similarity"`
}

// Params overlays the set fields of in onto defaults.
func (in SearchInput) Params(defaults retriever.Params) retriever.Params {
	p := defaults
	if in.TopK != nil {
		p.TopK = *in.TopK
	}
	if in.KEach != nil {
		p.KEach = *in.KEach
	}
	if in.Alpha != nil {
		p.Alpha = *in.Alpha
	}
	if in.BetaTitle != nil {
		p.BetaTitle = *in.BetaTitle
	}
	if in.BetaSur != nil {
		p.BetaSur = *in.BetaSur
	}
	return p
}

// SearchResult represents a single ranked figure.
type SearchResult struct {
	ID     int     `json:"id"`
	Score  float64 `json:"score"`
	SText  float64 `json:"s_text"`
	STitle float64 `json:"s_title"`
	SSur   float64 `json:"s_sur"`
	SImg   float64 `json:"s_img"`

	DocName      string    `json:"doc_name"`
	UID          string    `json:"uid"`
	Page         int       `json:"page"`
	ImageName    string    `json:"image_name"`
	ImagePath    string    `json:"image_path"`
	Coordinate   []float64 `json:"coordinate"`
	FigureTitle  string    `json:"figure_title"`
	SurTextList  []string  `json:"sur_text_list"`
	SurChunks    []string  `json:"sur_chunks_used"`
	BestSurChunk *string   `json:"best_sur_chunk"`
}

// SearchOutput represents the output of a search operation.
type SearchOutput struct {
	Query   string           `json:"query"`
	Params  retriever.Params `json:"params"`
	Results []SearchResult   `json:"results"`
	Count   int              `json:"count"`
}

// Search runs input against searcher, filling unset parameters from defaults.
// Errors from the engine are returned unwrapped so callers can map them.
func Search(
	ctx context.Context,
	searcher Searcher,
	input SearchInput,
	defaults retriever.Params,
	logger *slog.Logger,
) (*SearchOutput, error) {
	params := input.Params(defaults)

	logger.Debug("search request",
		"query", input.Query,
		"top_k", params.TopK,
		"k_each", params.KEach,
		"alpha", params.Alpha,
	)

	results, err := searcher.Search(ctx, input.Query, params)
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, BuildSearchResult(r))
	}

	return &SearchOutput{
		Query:   input.Query,
		Params:  params,
		Results: out,
		Count:   len(out),
	}, nil
}

// BuildSearchResult flattens an engine result into its wire form.
func BuildSearchResult(r retriever.Result) SearchResult {
	coord := r.Coordinate
	if coord == nil {
		coord = []float64{}
	}
	sur := r.SurTextList
	if sur == nil {
		sur = []string{}
	}
	chunks := r.SurChunks
	if chunks == nil {
		chunks = []string{}
	}

	return SearchResult{
		ID:           int(r.ID),
		Score:        r.Score,
		SText:        r.SText,
		STitle:       r.STitle,
		SSur:         r.SSur,
		SImg:         r.SImg,
		DocName:      r.DocName,
		UID:          r.UID,
		Page:         r.Page,
		ImageName:    r.ImageName,
		ImagePath:    r.ImagePath,
		Coordinate:   coord,
		FigureTitle:  r.FigureTitle,
		SurTextList:  sur,
		SurChunks:    chunks,
		BestSurChunk: r.BestSurChunk,
	}
}
