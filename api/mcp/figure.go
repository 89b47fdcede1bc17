package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/figsearch/pkg/store"
)

var (
	figureToolName    = "get_figure"
	figureDescription = "Fetch the full metadata of one figure by the id returned from search_figures: document, page, coordinates, title, surrounding texts and the chunks that were embedded."
)

// FigureInput represents the input arguments for the get_figure tool.
type FigureInput struct {
	ID int `json:"id" jsonschema:"the figure id returned by search_figures"`
}

// FigureOutput represents the structured output of a figure lookup.
type FigureOutput struct {
	ID     int            `json:"id"`
	Figure store.Metadata `json:"figure"`
}

// handleFigure returns the metadata of one record.
func (s *Server) handleFigure(_ context.Context, _ *mcp.CallToolRequest, input FigureInput) (*mcp.CallToolResult, FigureOutput, error) {
	meta, err := s.config.Engine.Record(store.RecordID(input.ID))
	if err != nil {
		return toolError(fmt.Sprintf("Figure lookup failed: %v", err)), FigureOutput{}, nil
	}

	if meta.Coordinate == nil {
		meta.Coordinate = []float64{}
	}
	output := FigureOutput{ID: input.ID, Figure: meta}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return toolError(fmt.Sprintf("Failed to serialize figure: %v", err)), FigureOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
