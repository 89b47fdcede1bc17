package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/figsearch/pkg/embeddings"
	"github.com/papercomputeco/figsearch/pkg/embeddings/ollama"
)

var _ = Describe("Embedder", func() {
	var (
		server   *httptest.Server
		received map[string]any
		status   int
		reply    string
	)

	BeforeEach(func() {
		received = nil
		status = http.StatusOK
		reply = `{"embeddings": [[3, 4], [0, 2]]}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/embed"))
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
		DeferCleanup(server.Close)
	})

	It("defaults the model", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Model()).To(Equal(ollama.DefaultEmbeddingModel))
	})

	It("sends every text in one request and normalizes the answer", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL, Model: "m"})
		Expect(err).NotTo(HaveOccurred())

		vecs, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
		Expect(err).NotTo(HaveOccurred())
		Expect(received["model"]).To(Equal("m"))
		Expect(received["input"]).To(Equal([]any{"a", "b"}))
		Expect(vecs[0][0]).To(BeNumerically("~", 0.6, 1e-6))
		Expect(vecs[1]).To(Equal([]float32{0, 1}))
	})

	It("wraps server errors", func() {
		status = http.StatusInternalServerError
		reply = "overloaded"
		e, _ := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		_, err := e.EmbedTexts(context.Background(), []string{"a"})
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
		Expect(err.Error()).To(ContainSubstring("overloaded"))
	})

	It("rejects a count mismatch", func() {
		e, _ := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		_, err := e.EmbedTexts(context.Background(), []string{"a"})
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	It("skips the request for no texts", func() {
		e, _ := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		vecs, err := e.EmbedTexts(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(vecs).To(BeEmpty())
		Expect(received).To(BeNil())
	})

	It("asks for truncated vectors and checks their width", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL + "/", Dimensions: 3})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.EmbedTexts(context.Background(), []string{"a", "b"})
		Expect(received["dimensions"]).To(BeNumerically("==", 3))
		Expect(received["truncate"]).To(BeTrue())
		Expect(err).To(MatchError(ContainSubstring("configured 3")))
	})

	It("rejects ragged vectors", func() {
		reply = `{"embeddings": [[1, 0], [1]]}`
		e, _ := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		_, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
	})

	It("rejects negative dimensions", func() {
		_, err := ollama.NewEmbedder(ollama.EmbedderConfig{Dimensions: -1})
		Expect(err).To(HaveOccurred())
	})
})
