package retriever_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/figsearch/pkg/retriever"
)

var _ = Describe("Params", func() {
	It("has the standard defaults", func() {
		Expect(retriever.DefaultParams()).To(Equal(retriever.Params{
			TopK: 10, KEach: 50, Alpha: 0.6, BetaTitle: 0.7, BetaSur: 0.3,
		}))
	})

	It("renormalizes the betas", func() {
		p, err := retriever.Params{TopK: 1, KEach: 1, Alpha: 0.5, BetaTitle: 7, BetaSur: 3}.Validate()
		Expect(err).NotTo(HaveOccurred())
		Expect(p.BetaTitle).To(BeNumerically("~", 0.7, 1e-12))
		Expect(p.BetaSur).To(BeNumerically("~", 0.3, 1e-12))
	})

	DescribeTable("rejects unusable weights",
		func(p retriever.Params) {
			_, err := p.Validate()
			Expect(err).To(MatchError(retriever.ErrInvalidWeights))
		},
		Entry("zero beta sum", retriever.Params{Alpha: 0.5}),
		Entry("negative beta", retriever.Params{Alpha: 0.5, BetaTitle: 1, BetaSur: -0.5}),
		Entry("alpha above one", retriever.Params{Alpha: 1.5, BetaTitle: 1}),
		Entry("negative alpha", retriever.Params{Alpha: -0.1, BetaTitle: 1}),
		Entry("NaN alpha", retriever.Params{Alpha: math.NaN(), BetaTitle: 1}),
	)

	DescribeTable("rejects negative counts",
		func(p retriever.Params) {
			_, err := p.Validate()
			Expect(err).To(MatchError(retriever.ErrInvalidParams))
		},
		Entry("top_k", retriever.Params{TopK: -1, Alpha: 0.5, BetaTitle: 1}),
		Entry("k_each", retriever.Params{KEach: -1, Alpha: 0.5, BetaTitle: 1}),
	)

	It("accepts the alpha bounds", func() {
		for _, a := range []float64{0, 1} {
			_, err := retriever.Params{Alpha: a, BetaSur: 1}.Validate()
			Expect(err).NotTo(HaveOccurred())
		}
	})
})
