package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/figsearch/pkg/dotdir"
)

var _ = Describe("dotdir.Manager ledger", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		m = dotdir.NewManager()
	})

	It("returns an empty ledger when no file exists", func() {
		ledger, err := m.LoadLedger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ledger.Entries).To(BeEmpty())
	})

	It("round-trips entries", func() {
		mod := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		ledger := &dotdir.Ledger{}
		ledger.Record("/docs/a/metadata.json", dotdir.LedgerEntry{DocName: "a", Records: 3, ModTime: mod})
		Expect(m.SaveLedger(ledger, tmpDir)).To(Succeed())

		loaded, err := m.LoadLedger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Seen("/docs/a/metadata.json", mod)).To(BeTrue())
		Expect(loaded.Seen("/docs/a/metadata.json", mod.Add(time.Second))).To(BeFalse())
		Expect(loaded.Seen("/docs/b/metadata.json", mod)).To(BeFalse())
		Expect(loaded.Entries["/docs/a/metadata.json"].Records).To(Equal(3))
	})

	It("returns error for invalid JSON", func() {
		Expect(os.WriteFile(filepath.Join(tmpDir, "ingested.json"), []byte("not json"), 0o644)).To(Succeed())
		_, err := m.LoadLedger(tmpDir)
		Expect(err).To(HaveOccurred())
	})

	It("refuses to save a nil ledger", func() {
		Expect(m.SaveLedger(nil, tmpDir)).To(HaveOccurred())
	})

	It("clears the ledger and tolerates a missing file", func() {
		Expect(m.SaveLedger(&dotdir.Ledger{}, tmpDir)).To(Succeed())
		Expect(m.ClearLedger(tmpDir)).To(Succeed())
		Expect(filepath.Join(tmpDir, "ingested.json")).NotTo(BeAnExistingFile())
		Expect(m.ClearLedger(tmpDir)).To(Succeed())
	})
})
