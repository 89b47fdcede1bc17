package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apisearch "github.com/papercomputeco/figsearch/api/search"
	"github.com/papercomputeco/figsearch/pkg/logger"
	"github.com/papercomputeco/figsearch/pkg/retriever"
	"github.com/papercomputeco/figsearch/pkg/store"
	testutils "github.com/papercomputeco/figsearch/pkg/utils/test"
)

func textOf(res *mcp.CallToolResult) string {
	Expect(res.Content).To(HaveLen(1))
	tc, ok := res.Content[0].(*mcp.TextContent)
	Expect(ok).To(BeTrue())
	return tc.Text
}

var _ = Describe("Figure tools", func() {
	var (
		server *Server
		engine *retriever.Engine
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		text, image := testutils.AnimalEncoders()
		engine = retriever.New(store.New(), text, image)

		var err error
		server, err = NewServer(Config{
			Engine:   engine,
			Defaults: retriever.DefaultParams(),
			Logger:   logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	ingestAnimals := func() {
		src, err := testutils.WriteDocument(filepath.Join(GinkgoT().TempDir(), "animals"), testutils.AnimalDocument(), "cat", "dog")
		Expect(err).NotTo(HaveOccurred())
		_, err = engine.Ingest(ctx, src)
		Expect(err).NotTo(HaveOccurred())
	}

	Describe("search_figures", func() {
		It("requires a query", func() {
			res, _, err := server.handleSearch(ctx, nil, apisearch.SearchInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(textOf(res)).To(Equal("query is required"))
		})

		It("reports an empty store as a tool error", func() {
			res, _, err := server.handleSearch(ctx, nil, apisearch.SearchInput{Query: "cat"})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(textOf(res)).To(ContainSubstring(store.ErrNotBuilt.Error()))
		})

		It("returns ranked figures as structured output and JSON text", func() {
			ingestAnimals()
			one := 1

			res, out, err := server.handleSearch(ctx, nil, apisearch.SearchInput{Query: "cat", TopK: &one})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.Count).To(Equal(1))
			Expect(out.Results[0].ImageName).To(Equal("cat"))
			Expect(out.Params.TopK).To(Equal(1))

			var decoded apisearch.SearchOutput
			Expect(json.Unmarshal([]byte(textOf(res)), &decoded)).To(Succeed())
			Expect(decoded.Results[0].ID).To(Equal(out.Results[0].ID))

			var raw struct {
				Results []map[string]any `json:"results"`
			}
			Expect(json.Unmarshal([]byte(textOf(res)), &raw)).To(Succeed())
			Expect(raw.Results[0]).To(HaveKeyWithValue("sur_chunks_used", Not(BeEmpty())))
		})
	})

	Describe("get_figure", func() {
		It("returns the figure metadata", func() {
			ingestAnimals()

			res, out, err := server.handleFigure(ctx, nil, FigureInput{ID: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeFalse())
			Expect(out.Figure.ImageName).To(Equal("dog"))
			Expect(out.Figure.Page).To(Equal(2))
			Expect(out.Figure.Coordinate).NotTo(BeNil())
		})

		It("reports unknown ids as a tool error", func() {
			res, _, err := server.handleFigure(ctx, nil, FigureInput{ID: 7})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.IsError).To(BeTrue())
			Expect(textOf(res)).To(ContainSubstring(store.ErrUnknownRecord.Error()))
		})
	})
})
