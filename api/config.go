// Package api provides the figsearch HTTP API: figure search, ingestion,
// record lookup and an MCP endpoint for agents.
package api

import "github.com/papercomputeco/figsearch/pkg/retriever"

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// StorePath is where the store is saved after each ingestion that
	// appended records. Empty disables saving.
	StorePath string

	// Defaults fill search parameters a request leaves unset.
	Defaults retriever.Params

	// NoMCP disables the tools on the /mcp endpoint.
	NoMCP bool
}
