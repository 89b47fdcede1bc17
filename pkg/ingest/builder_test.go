package ingest_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/figsearch/pkg/ingest"
	"github.com/papercomputeco/figsearch/pkg/textnorm"
)

const documentJSON = `{
  "name": "report",
  "uid": "doc-uid",
  "imgs": [
    {
      "name": "fig1",
      "page": 2,
      "coordinate": [1, 2, 3, 4],
      "figure_title": "Figure  1:\tcats",
      "surrounding_texts": ["  first text  ", "", "second text", "third text", "fourth text"]
    },
    {
      "name": "missing",
      "page": 3,
      "figure_title": "gone"
    },
    {
      "name": "photo.JPG",
      "page": 4,
      "figure_title": "a photo",
      "surrounding_texts": null
    }
  ]
}`

func touch(path string) {
	Expect(os.WriteFile(path, []byte("img"), 0o644)).To(Succeed())
}

var _ = Describe("Builder", func() {
	var (
		dir      string
		metaPath string
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		metaPath = filepath.Join(dir, "metadata.json")
		Expect(os.WriteFile(metaPath, []byte(documentJSON), 0o644)).To(Succeed())
		touch(filepath.Join(dir, "fig1.png"))
		touch(filepath.Join(dir, "photo.JPG"))
	})

	It("builds records for figures with images and reports the rest", func() {
		res, err := ingest.NewBuilder().BuildSource(ingest.Source{MetadataPath: metaPath, ImagesDir: dir})
		Expect(err).NotTo(HaveOccurred())

		Expect(res.DocName).To(Equal("report"))
		Expect(res.UID).To(Equal("doc-uid"))
		Expect(res.Records).To(HaveLen(2))
		Expect(res.Skipped).To(ConsistOf(ingest.Skip{
			DocName:   "report",
			ImageName: "missing",
			Path:      filepath.Join(dir, "missing.png"),
			Reason:    ingest.ErrMissingResource.Error(),
		}))

		first := res.Records[0]
		Expect(first.ImagePath).To(Equal(filepath.Join(dir, "fig1.png")))
		Expect(first.Page).To(Equal(2))
		Expect(first.Coordinate).To(Equal([]float64{1, 2, 3, 4}))
		Expect(first.FigureTitle).To(Equal("Figure 1: cats"))
		Expect(first.SurTextList).To(Equal([]string{"first text", "second text", "third text"}))
		Expect(first.SurChunks).To(Equal([]string{"first text", "second text", "third text"}))

		second := res.Records[1]
		Expect(second.ImagePath).To(Equal(filepath.Join(dir, "photo.JPG")))
		Expect(second.SurTextList).To(BeEmpty())
		Expect(second.SurChunks).To(BeEmpty())
	})

	It("chunks surrounding text with the configured geometry", func() {
		b := ingest.NewBuilder(ingest.WithSurroundingCount(1), ingest.WithChunkSize(4), ingest.WithChunkOverlap(1))
		res, err := b.BuildSource(ingest.Source{MetadataPath: metaPath, ImagesDir: dir})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Records[0].SurTextList).To(Equal([]string{"first text"}))
		Expect(res.Records[0].SurChunks).To(Equal([]string{"firs", "st t", "text", "t"}))
	})

	It("drops garbled surrounding texts when enabled", func() {
		doc := &ingest.Document{
			Name: "d",
			Items: []ingest.Item{{
				Name:             "fig1",
				SurroundingTexts: []string{"", "readable text here"},
			}},
		}
		b := ingest.NewBuilder(ingest.WithDropGarbled(true, textnorm.GarbledOptions{}))
		res := b.Build(doc, dir)
		Expect(res.Records[0].SurTextList).To(Equal([]string{"readable text here"}))
	})

	It("applies a document name override", func() {
		res, err := ingest.NewBuilder().BuildSource(ingest.Source{
			MetadataPath: metaPath,
			ImagesDir:    dir,
			DocName:      "renamed",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.DocName).To(Equal("renamed"))
		Expect(res.Records[0].DocName).To(Equal("renamed"))
	})

	It("yields no records when nothing resolves", func() {
		res, err := ingest.NewBuilder().BuildSource(ingest.Source{
			MetadataPath: metaPath,
			ImagesDir:    filepath.Join(dir, "elsewhere"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Records).To(BeEmpty())
		Expect(res.Skipped).To(HaveLen(3))
	})

	It("fails on an unreadable document", func() {
		_, err := ingest.NewBuilder().BuildSource(ingest.Source{MetadataPath: filepath.Join(dir, "nope.json")})
		Expect(err).To(MatchError(ingest.ErrInvalidDocument))
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})
})

var _ = Describe("Document", func() {
	It("derives a stable uid from the name when none is given", func() {
		a := &ingest.Document{Name: "report"}
		b := &ingest.Document{Name: "report"}
		c := &ingest.Document{Name: "other"}
		Expect(a.ResolvedUID()).To(Equal(b.ResolvedUID()))
		Expect(a.ResolvedUID()).NotTo(Equal(c.ResolvedUID()))
		Expect(a.ResolvedUID()).To(HaveLen(36))
	})
})

var _ = DescribeTable("ImagePath",
	func(name, want string) {
		Expect(ingest.ImagePath("/imgs", name)).To(Equal(want))
	},
	Entry("bare name", "fig1", "/imgs/fig1.png"),
	Entry("png", "fig1.png", "/imgs/fig1.png"),
	Entry("upper-case jpeg", "fig1.JPEG", "/imgs/fig1.JPEG"),
	Entry("dotted name without image extension", "fig.1", "/imgs/fig.1.png"),
)

var _ = Describe("ImagePath on disk", func() {
	It("falls back to the .png suffix when only that file exists", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "fig.png.png"), []byte("png"), 0o644)).To(Succeed())

		Expect(ingest.ImagePath(dir, "fig.png")).To(Equal(filepath.Join(dir, "fig.png.png")))
	})

	It("prefers the name as given when it exists", func() {
		dir := GinkgoT().TempDir()
		for _, name := range []string{"fig.png", "fig.png.png"} {
			Expect(os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644)).To(Succeed())
		}

		Expect(ingest.ImagePath(dir, "fig.png")).To(Equal(filepath.Join(dir, "fig.png")))
	})
})
