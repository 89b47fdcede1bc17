package versioncmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	versioncmder "github.com/papercomputeco/figsearch/cmd/version"
	"github.com/papercomputeco/figsearch/pkg/utils"
	testutils "github.com/papercomputeco/figsearch/pkg/utils/test"
)

var _ = Describe("NewVersionCmd", func() {
	It("prints the build information", func() {
		out, err := testutils.RunCommand(versioncmder.NewVersionCmd())
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("figsearch " + utils.Version + "\n"))
		Expect(out).To(ContainSubstring("Sha: " + utils.Sha))
	})

	It("rejects arguments", func() {
		_, err := testutils.RunCommand(versioncmder.NewVersionCmd(), "extra")
		Expect(err).To(HaveOccurred())
	})
})
