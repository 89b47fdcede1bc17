// Package mcp provides an MCP (Model Context Protocol) server exposing figure
// search to agents.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apisearch "github.com/papercomputeco/figsearch/api/search"
	"github.com/papercomputeco/figsearch/pkg/retriever"
	"github.com/papercomputeco/figsearch/pkg/store"
	"github.com/papercomputeco/figsearch/pkg/utils"
)

// Engine is the part of the retrieval engine the tools use.
type Engine interface {
	apisearch.Searcher
	Record(id store.RecordID) (store.Metadata, error)
}

// Config configures the tools. With Noop set the server answers the MCP
// handshake but lists no tools, and Engine and Logger may be nil.
type Config struct {
	Engine   Engine
	Defaults retriever.Params
	Noop     bool
	Logger   *slog.Logger
}

func (c Config) validate() error {
	switch {
	case c.Noop:
		return nil
	case c.Engine == nil:
		return errors.New("engine is required")
	case c.Logger == nil:
		return errors.New("logger is required")
	}
	return nil
}

// Server serves the figure tools over stateless streamable HTTP.
type Server struct {
	config  Config
	handler http.Handler
}

func NewServer(c Config) (*Server, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	s := &Server{config: c}
	srv := mcp.NewServer(&mcp.Implementation{Name: "figsearch", Version: utils.Version}, nil)
	if !c.Noop {
		mcp.AddTool(srv, &mcp.Tool{Name: searchToolName, Description: searchDescription}, s.handleSearch)
		mcp.AddTool(srv, &mcp.Tool{Name: figureToolName, Description: figureDescription}, s.handleFigure)
	}

	s.handler = mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return srv },
		&mcp.StreamableHTTPOptions{Stateless: true},
	)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// toolError reports msg to the agent as a failed call rather than a
// protocol error.
func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}
