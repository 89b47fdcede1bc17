package store_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/figsearch/pkg/store"
	testutils "github.com/papercomputeco/figsearch/pkg/utils/test"
	"github.com/papercomputeco/figsearch/pkg/vector"
)

// record builds metadata with the given chunk texts.
func record(name string, chunks ...string) store.Metadata {
	return store.Metadata{
		DocName:     "doc",
		UID:         "uid-1",
		Page:        1,
		ImageName:   name,
		ImagePath:   "/imgs/" + name + ".png",
		Coordinate:  []float64{0, 0, 10, 10},
		FigureTitle: "title " + name,
		SurTextList: chunks,
		SurChunks:   chunks,
	}
}

func twoRecordBatch() *store.Batch {
	return &store.Batch{
		Records: []store.Metadata{
			record("a", "alpha", "beta"),
			record("b"),
		},
		TitleVectors: [][]float32{{1, 0}, {0, 1}},
		ChunkVectors: [][][]float32{
			{{1, 0}, {0, 1}},
			{},
		},
		ImageVectors: [][]float32{{1, 0, 0}, {0, 0, 1}},
	}
}

var _ = Describe("Store", func() {
	var s *store.Store

	BeforeEach(func() {
		s = store.New()
	})

	Describe("an empty store", func() {
		It("is not built", func() {
			Expect(s.Built()).To(BeFalse())
			Expect(s.Len()).To(Equal(0))
			t, i := s.Dimensions()
			Expect(t).To(Equal(0))
			Expect(i).To(Equal(0))
		})

		It("fails recall with ErrNotBuilt", func() {
			_, err := s.Recall([]float32{1, 0}, store.ChannelTitle, 5)
			Expect(err).To(MatchError(store.ErrNotBuilt))
		})

		It("fails Read with ErrNotBuilt", func() {
			err := s.Read(func(store.Reader) error { return nil })
			Expect(err).To(MatchError(store.ErrNotBuilt))
		})

		It("accepts an empty batch without building", func() {
			id, err := s.Append(&store.Batch{})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(store.RecordID(0)))
			Expect(s.Built()).To(BeFalse())
		})
	})

	Describe("Append", func() {
		It("assigns ids in order starting at the current count", func() {
			first, err := s.Append(twoRecordBatch())
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(Equal(store.RecordID(0)))

			second, err := s.Append(twoRecordBatch())
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(store.RecordID(2)))
			Expect(s.Len()).To(Equal(4))

			meta, err := s.Metadata(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(meta.ImageName).To(Equal("b"))
		})

		It("fixes dimensions from the first batch", func() {
			_, err := s.Append(twoRecordBatch())
			Expect(err).NotTo(HaveOccurred())
			t, i := s.Dimensions()
			Expect(t).To(Equal(2))
			Expect(i).To(Equal(3))
			Expect(s.EnsureDimensions(2, 3)).To(Succeed())
			Expect(s.EnsureDimensions(4, 3)).To(MatchError(store.ErrDimensionMismatch))
		})

		It("rejects a batch whose widths disagree with the store", func() {
			_, err := s.Append(twoRecordBatch())
			Expect(err).NotTo(HaveOccurred())

			b := twoRecordBatch()
			b.TitleVectors = [][]float32{{1, 0, 0}, {0, 1, 0}}
			b.ChunkVectors = [][][]float32{{{1, 0, 0}, {0, 1, 0}}, {}}
			_, err = s.Append(b)
			Expect(err).To(MatchError(store.ErrDimensionMismatch))
			Expect(s.Len()).To(Equal(2))
		})

		It("rejects ragged rows inside one batch", func() {
			b := twoRecordBatch()
			b.ImageVectors[1] = []float32{1, 0}
			_, err := s.Append(b)
			Expect(err).To(MatchError(store.ErrDimensionMismatch))
			Expect(s.Built()).To(BeFalse())
		})

		It("rejects misaligned slices", func() {
			b := twoRecordBatch()
			b.TitleVectors = b.TitleVectors[:1]
			_, err := s.Append(b)
			Expect(err).To(MatchError(store.ErrInvalidBatch))

			b = twoRecordBatch()
			b.ChunkVectors[0] = b.ChunkVectors[0][:1]
			_, err = s.Append(b)
			Expect(err).To(MatchError(store.ErrInvalidBatch))
		})

		It("leaves the store unchanged when an index rejects the batch", func() {
			armed := false
			s = store.New(store.WithIndexFactory(testutils.NewFailingIndexFactory(&armed)))
			_, err := s.Append(twoRecordBatch())
			Expect(err).NotTo(HaveOccurred())

			armed = true
			_, err = s.Append(twoRecordBatch())
			Expect(err).To(HaveOccurred())
			Expect(s.Len()).To(Equal(2))

			ids, err := s.Recall([]float32{0, 1}, store.ChannelTitle, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]store.RecordID{1, 0}))
		})

		It("resets to unbuilt when the first batch fails in an index", func() {
			armed := true
			s = store.New(store.WithIndexFactory(testutils.NewFailingIndexFactory(&armed)))
			_, err := s.Append(twoRecordBatch())
			Expect(err).To(HaveOccurred())
			Expect(s.Built()).To(BeFalse())
		})

		It("copies metadata so callers cannot mutate stored records", func() {
			b := twoRecordBatch()
			_, err := s.Append(b)
			Expect(err).NotTo(HaveOccurred())
			b.Records[0].SurChunks[0] = "changed"

			meta, err := s.Metadata(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(meta.SurChunks).To(Equal([]string{"alpha", "beta"}))
		})
	})

	Describe("Pool", func() {
		It("averages chunk vectors", func() {
			Expect(store.Pool([][]float32{{1, 0}, {0, 1}}, 2)).To(Equal([]float32{0.5, 0.5}))
		})

		It("returns the zero vector when there are no chunks", func() {
			Expect(store.Pool(nil, 3)).To(Equal([]float32{0, 0, 0}))
		})
	})

	Describe("Recall", func() {
		BeforeEach(func() {
			_, err := s.Append(twoRecordBatch())
			Expect(err).NotTo(HaveOccurred())
		})

		It("ranks each channel by inner product", func() {
			ids, err := s.Recall([]float32{0, 0, 1}, store.ChannelImage, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]store.RecordID{1}))
		})

		It("uses the zero pooled vector for records without chunks", func() {
			// record 0 pools to (0.5, 0.5); record 1 pools to zero
			ids, err := s.Recall([]float32{1, 0}, store.ChannelSurrounding, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]store.RecordID{0, 1}))

			ids, err = s.Recall([]float32{-1, 0}, store.ChannelSurrounding, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]store.RecordID{1, 0}))
		})

		It("returns nothing for k of zero", func() {
			ids, err := s.Recall([]float32{1, 0}, store.ChannelTitle, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})

		It("fails on a query of the wrong width", func() {
			_, err := s.Recall([]float32{1, 0, 0}, store.ChannelTitle, 1)
			Expect(err).To(MatchError(vector.ErrDimension))
		})
	})

	Describe("Read", func() {
		It("exposes raw vectors and chunk texts", func() {
			_, err := s.Append(twoRecordBatch())
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Read(func(r store.Reader) error {
				Expect(r.Len()).To(Equal(2))
				Expect(r.TitleVector(1)).To(Equal([]float32{0, 1}))
				Expect(r.ImageVector(0)).To(Equal([]float32{1, 0, 0}))

				vecs, texts := r.Chunks(0)
				Expect(vecs).To(Equal([][]float32{{1, 0}, {0, 1}}))
				Expect(texts).To(Equal([]string{"alpha", "beta"}))

				vecs, texts = r.Chunks(1)
				Expect(vecs).To(BeEmpty())
				Expect(texts).To(BeEmpty())

				Expect(r.Metadata(1).ImageName).To(Equal("b"))
				return nil
			})).To(Succeed())
		})
	})

	It("reports unknown records", func() {
		_, err := s.Metadata(0)
		Expect(err).To(MatchError(store.ErrUnknownRecord))
	})
})
