package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apisearch "github.com/papercomputeco/figsearch/api/search"
)

var (
	searchToolName    = "search_figures"
	searchDescription = "Search ingested document figures by natural language. Each figure is scored on its title, the text around it and its image content; the scores are fused and the best figures are returned with their document, page, title and the surrounding text chunk that matched best."
)

// handleSearch processes a search request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input apisearch.SearchInput) (*mcp.CallToolResult, apisearch.SearchOutput, error) {
	if input.Query == "" {
		return toolError("query is required"), apisearch.SearchOutput{}, nil
	}

	output, err := apisearch.Search(ctx, s.config.Engine, input, s.config.Defaults, s.config.Logger)
	if err != nil {
		s.config.Logger.Error("MCP search failed", "query", input.Query, "error", err)
		return toolError(fmt.Sprintf("Search failed: %v", err)), apisearch.SearchOutput{}, nil
	}

	// Structured tool output is mirrored as JSON text for clients that only
	// read content blocks.
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), apisearch.SearchOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, *output, nil
}
