package api

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	apisearch "github.com/papercomputeco/figsearch/api/search"
	"github.com/papercomputeco/figsearch/pkg/ingest"
	"github.com/papercomputeco/figsearch/pkg/retriever"
	"github.com/papercomputeco/figsearch/pkg/store"
)

// IngestRequest lists the documents to add in one batch.
type IngestRequest struct {
	Sources []ingest.Source `json:"sources"`
}

// IngestResponse reports an ingestion and whether the store was saved.
type IngestResponse struct {
	*retriever.IngestReport
	Saved bool `json:"saved"`
}

// RecordResponse is one record's metadata.
type RecordResponse struct {
	ID int `json:"id"`
	store.Metadata
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleStats returns the store summary.
func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.engine.Stats())
}

// handleSearchQuery handles GET /v1/search.
// Query parameters:
//   - query (required): the search query text
//   - top_k, k_each (optional): result and per-channel candidate counts
//   - alpha, beta_title, beta_sur (optional): fusion weights
func (s *Server) handleSearchQuery(c *fiber.Ctx) error {
	input := apisearch.SearchInput{Query: c.Query("query")}

	var err error
	if input.TopK, err = queryInt(c, "top_k"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if input.KEach, err = queryInt(c, "k_each"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if input.Alpha, err = queryFloat(c, "alpha"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if input.BetaTitle, err = queryFloat(c, "beta_title"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if input.BetaSur, err = queryFloat(c, "beta_sur"); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	return s.search(c, input)
}

// handleSearchBody handles POST /v1/search with a JSON SearchInput body.
func (s *Server) handleSearchBody(c *fiber.Ctx) error {
	var input apisearch.SearchInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	return s.search(c, input)
}

func (s *Server) search(c *fiber.Ctx, input apisearch.SearchInput) error {
	if input.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query is required"})
	}

	output, err := apisearch.Search(c.UserContext(), s.engine, input, s.config.Defaults, s.logger)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(output)
}

// handleGetRecord returns a single record by id.
func (s *Server) handleGetRecord(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id must be an integer"})
	}

	meta, err := s.engine.Record(store.RecordID(id))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(RecordResponse{ID: id, Metadata: meta})
}

// handleIngest adds documents to the store and saves it when configured.
func (s *Server) handleIngest(c *fiber.Ctx) error {
	var req IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if len(req.Sources) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "at least one source is required"})
	}
	for i, src := range req.Sources {
		if src.MetadataPath == "" || src.ImagesDir == "" {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: fmt.Sprintf("source %d needs metadata_path and images_dir", i),
			})
		}
	}

	report, err := s.engine.Ingest(c.UserContext(), req.Sources...)
	if err != nil {
		return s.fail(c, err)
	}

	resp := IngestResponse{IngestReport: report}
	if s.config.StorePath != "" && report.Records > 0 {
		if err := s.engine.Save(s.config.StorePath); err != nil {
			return s.fail(c, fmt.Errorf("saving store: %w", err))
		}
		resp.Saved = true
	}
	return c.JSON(resp)
}

func queryInt(c *fiber.Ctx, key string) (*int, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", key)
	}
	return &v, nil
}

func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &v, nil
}
