package hashing_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/figsearch/pkg/embeddings"
	"github.com/papercomputeco/figsearch/pkg/embeddings/hashing"
	"github.com/papercomputeco/figsearch/pkg/vector"
)

var _ = Describe("Embedder", func() {
	var e *hashing.Embedder

	BeforeEach(func() {
		var err error
		e, err = hashing.NewEmbedder(64, "text")
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects non-positive widths", func() {
		_, err := hashing.NewEmbedder(0, "text")
		Expect(err).To(HaveOccurred())
	})

	It("is deterministic and unit length", func() {
		a, err := e.EmbedTexts(context.Background(), []string{"a cat on a mat"})
		Expect(err).NotTo(HaveOccurred())
		b, err := e.EmbedTexts(context.Background(), []string{"a cat on a mat"})
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
		Expect(a[0]).To(HaveLen(64))
		Expect(vector.Dot(a[0], a[0])).To(BeNumerically("~", 1, 1e-5))
	})

	It("scores shared words above unrelated ones", func() {
		vecs, err := e.EmbedTexts(context.Background(), []string{"cat", "Cat!", "zebra"})
		Expect(err).NotTo(HaveOccurred())
		Expect(vector.Dot(vecs[0], vecs[1])).To(BeNumerically("~", 1, 1e-5))
	})

	It("returns the zero vector for text without tokens", func() {
		vecs, err := e.EmbedTexts(context.Background(), []string{"  ...  "})
		Expect(err).NotTo(HaveOccurred())
		Expect(vecs[0]).To(Equal(make([]float32, 64)))
	})

	It("gives identical images identical vectors", func() {
		img := embeddings.Image{Data: []byte("some image bytes")}
		vecs, err := e.EmbedImages(context.Background(), []embeddings.Image{img, img})
		Expect(err).NotTo(HaveOccurred())
		Expect(vecs[0]).To(Equal(vecs[1]))
		Expect(vector.Dot(vecs[0], vecs[0])).To(BeNumerically("~", 1, 1e-5))
	})

	It("names the model by seed and width", func() {
		Expect(e.Model()).To(Equal("hashing-text-64"))
	})
})

var _ = DescribeTable("Tokens",
	func(text string, want []string) {
		Expect(hashing.Tokens(text)).To(Equal(want))
	},
	Entry("words", "Hello, World 42", []string{"hello", "world", "42"}),
	Entry("han runes", "猫的图片", []string{"猫", "的", "图", "片"}),
	Entry("mixed", "图1 shows", []string{"图", "1", "shows"}),
	Entry("nothing", " - ", nil),
)
