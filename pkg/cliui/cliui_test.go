package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/figsearch/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("returns the function error and marks the line", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")

		err := cliui.Step(&buf, "loading store", func() error { return boom })
		Expect(err).To(MatchError(boom))
		Expect(buf.String()).To(ContainSubstring("loading store"))
		Expect(buf.String()).To(ContainSubstring(cliui.FailMark))
	})

	It("marks success", func() {
		var buf bytes.Buffer
		Expect(cliui.Step(&buf, "ok", func() error { return nil })).To(Succeed())
		Expect(buf.String()).To(HaveSuffix("\n"))
		Expect(buf.String()).To(ContainSubstring(cliui.SuccessMark))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds below a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses seconds otherwise", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("RenderMarkdown", func() {
	It("keeps the text of the document", func() {
		out, err := cliui.RenderMarkdown("# Figure 1\n\nA cat.")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Figure 1"))
		Expect(out).To(ContainSubstring("A cat."))
	})
})

var _ = Describe("FormatDuration beyond a minute", func() {
	It("rounds to whole seconds", func() {
		Expect(cliui.FormatDuration(65*time.Second + 400*time.Millisecond)).To(Equal("1m5s"))
	})
})

var _ = Describe("KeyValue", func() {
	It("keeps label and value", func() {
		line := cliui.KeyValue("records", "12")
		Expect(line).To(HavePrefix("  "))
		Expect(line).To(ContainSubstring("records:"))
		Expect(line).To(ContainSubstring("12"))
	})
})

var _ = Describe("Mark", func() {
	It("follows the error", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
		Expect(cliui.Mark(errors.New("x"))).To(Equal(cliui.FailMark))
	})
})
