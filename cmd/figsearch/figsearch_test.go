package figsearchcmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	figsearchcmder "github.com/papercomputeco/figsearch/cmd/figsearch"
)

var _ = Describe("NewFigsearchCmd", func() {
	It("registers every subcommand", func() {
		cmd := figsearchcmder.NewFigsearchCmd()

		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"init", "ingest", "search", "serve", "status",
			"inspect", "watch", "config", "auth", "version",
		))
	})

	It("has the global flags", func() {
		cmd := figsearchcmder.NewFigsearchCmd()

		debug := cmd.PersistentFlags().Lookup("debug")
		Expect(debug).NotTo(BeNil())
		Expect(debug.Shorthand).To(Equal("d"))
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("runs status against an empty config dir", func() {
		dir := GinkgoT().TempDir()
		cmd := figsearchcmder.NewFigsearchCmd()

		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{"status", "--config-dir", dir})

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Store not built yet"))
	})
})
