package searchcmder_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apisearch "github.com/papercomputeco/figsearch/api/search"
	ingestcmder "github.com/papercomputeco/figsearch/cmd/figsearch/ingest"
	searchcmder "github.com/papercomputeco/figsearch/cmd/figsearch/search"
	"github.com/papercomputeco/figsearch/pkg/config"
	testutils "github.com/papercomputeco/figsearch/pkg/utils/test"
)

var _ = Describe("SearchAPI", func() {
	var (
		server   *httptest.Server
		received apisearch.SearchInput
		status   int
		response any
	)

	BeforeEach(func() {
		status = http.StatusOK
		response = apisearch.SearchOutput{
			Query:   "loss",
			Results: []apisearch.SearchResult{{ID: 3, Score: 0.9, FigureTitle: "loss curve"}},
			Count:   1,
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/v1/search"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			Expect(json.NewEncoder(w).Encode(response)).To(Succeed())
		}))
		DeferCleanup(server.Close)
	})

	It("posts the input and parses the output", func() {
		topK := 3
		out, err := searchcmder.SearchAPI(context.Background(), server.URL, apisearch.SearchInput{Query: "loss", TopK: &topK})
		Expect(err).NotTo(HaveOccurred())
		Expect(received.Query).To(Equal("loss"))
		Expect(*received.TopK).To(Equal(3))
		Expect(received.Alpha).To(BeNil())
		Expect(out.Count).To(Equal(1))
		Expect(out.Results[0].ID).To(Equal(3))
	})

	It("surfaces the API error message", func() {
		status = http.StatusConflict
		response = map[string]string{"error": "store not built"}

		_, err := searchcmder.SearchAPI(context.Background(), server.URL, apisearch.SearchInput{Query: "loss"})
		Expect(err).To(MatchError("search request failed (HTTP 409): store not built"))
	})

	It("fails when the server is unreachable", func() {
		server.Close()
		_, err := searchcmder.SearchAPI(context.Background(), server.URL, apisearch.SearchInput{Query: "loss"})
		Expect(err).To(MatchError(ContainSubstring("failed to connect to figsearch API")))
	})
})

var _ = Describe("PrintResults", func() {
	It("prints a placeholder for no results", func() {
		var buf bytes.Buffer
		searchcmder.PrintResults(&buf, &apisearch.SearchOutput{Query: "x"})
		Expect(buf.String()).To(Equal("No results found.\n"))
	})

	It("prints rank, title, document and best chunk", func() {
		chunk := "training loss falls"
		var buf bytes.Buffer
		searchcmder.PrintResults(&buf, &apisearch.SearchOutput{
			Query: "loss",
			Count: 1,
			Results: []apisearch.SearchResult{{
				ID: 0, Score: 0.75, FigureTitle: "loss curve",
				DocName: "paper", Page: 3, ImagePath: "/tmp/fig1.png", BestSurChunk: &chunk,
			}},
		})

		out := buf.String()
		Expect(out).To(ContainSubstring("#1"))
		Expect(out).To(ContainSubstring("0.7500"))
		Expect(out).To(ContainSubstring("loss curve"))
		Expect(out).To(ContainSubstring("paper, page 3"))
		Expect(out).To(ContainSubstring("training loss falls"))
	})
})

var _ = Describe("Search command execution", func() {
	var configDir string

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		cfg, err := config.PresetConfig("local")
		Expect(err).NotTo(HaveOccurred())
		cfger, err := config.NewConfiger(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfger.SaveConfig(cfg)).To(Succeed())

		docDir := filepath.Join(GinkgoT().TempDir(), "paper")
		_, err = testutils.WriteDocument(docDir, testutils.PaperDocument(), testutils.PaperImages...)
		Expect(err).NotTo(HaveOccurred())
		_, err = testutils.RunCommand(ingestcmder.NewIngestCmd(), "--config-dir", configDir, docDir)
		Expect(err).NotTo(HaveOccurred())
	})

	It("searches the local store", func() {
		out, err := testutils.RunCommand(searchcmder.NewSearchCmd(),
			"--config-dir", configDir, "--local", "--json", "--top-k", "1", "loss curve")
		Expect(err).NotTo(HaveOccurred())

		var output apisearch.SearchOutput
		Expect(json.Unmarshal([]byte(out), &output)).To(Succeed())
		Expect(output.Params.TopK).To(Equal(1))
		Expect(output.Results).To(HaveLen(1))
		Expect(output.Results[0].ImageName).To(Equal("fig1"))
	})

	It("rejects invalid weights", func() {
		_, err := testutils.RunCommand(searchcmder.NewSearchCmd(),
			"--config-dir", configDir, "--local", "--alpha", "2", "loss curve")
		Expect(err).To(MatchError(ContainSubstring("invalid fusion weights")))
	})

	It("requires exactly one query", func() {
		_, err := testutils.RunCommand(searchcmder.NewSearchCmd(), "--config-dir", configDir)
		Expect(err).To(HaveOccurred())
	})
})
