package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/figsearch/api/mcp"
	"github.com/papercomputeco/figsearch/pkg/ingest"
	"github.com/papercomputeco/figsearch/pkg/retriever"
	"github.com/papercomputeco/figsearch/pkg/store"
	"github.com/papercomputeco/figsearch/pkg/vector"
)

// Server is the API server for querying and feeding a figure store.
type Server struct {
	config Config
	engine *retriever.Engine
	logger *slog.Logger
	app    *fiber.App
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer creates a new API server over engine.
func NewServer(config Config, engine *retriever.Engine, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		engine: engine,
		logger: logger,
		app:    app,
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Engine:   engine,
		Defaults: config.Defaults,
		Noop:     config.NoMCP,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/stats", s.handleStats)
	app.Get("/v1/search", s.handleSearchQuery)
	app.Post("/v1/search", s.handleSearchBody)
	app.Get("/v1/records/:id", s.handleGetRecord)
	app.Post("/v1/ingest", s.handleIngest)
	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotBuilt),
		errors.Is(err, store.ErrDimensionMismatch),
		errors.Is(err, vector.ErrDimension):
		return fiber.StatusConflict
	case errors.Is(err, retriever.ErrInvalidWeights),
		errors.Is(err, retriever.ErrInvalidParams),
		errors.Is(err, ingest.ErrInvalidDocument):
		return fiber.StatusBadRequest
	case errors.Is(err, store.ErrUnknownRecord):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(status).JSON(ErrorResponse{Error: err.Error()})
}
