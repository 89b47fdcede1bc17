package ingestcmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	ingestcmder "github.com/papercomputeco/figsearch/cmd/figsearch/ingest"
	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/store"
	testutils "github.com/papercomputeco/figsearch/pkg/utils/test"
)

var _ = Describe("ExpandPatterns", func() {
	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		for _, doc := range []string{"a", "b/nested", "c"} {
			_, err := testutils.WriteDocument(filepath.Join(root, doc), testutils.PaperDocument())
			Expect(err).NotTo(HaveOccurred())
		}
	})

	It("expands doublestar globs", func() {
		paths, err := ingestcmder.ExpandPatterns([]string{filepath.Join(root, "**", "metadata.json")})
		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(Equal([]string{
			filepath.Join(root, "a", "metadata.json"),
			filepath.Join(root, "b", "nested", "metadata.json"),
			filepath.Join(root, "c", "metadata.json"),
		}))
	})

	It("searches directories recursively", func() {
		paths, err := ingestcmder.ExpandPatterns([]string{filepath.Join(root, "b")})
		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(Equal([]string{filepath.Join(root, "b", "nested", "metadata.json")}))
	})

	It("de-duplicates overlapping patterns", func() {
		paths, err := ingestcmder.ExpandPatterns([]string{
			filepath.Join(root, "a", "metadata.json"),
			filepath.Join(root, "*", "metadata.json"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(paths).To(HaveLen(2))
	})

	It("fails when nothing matches", func() {
		_, err := ingestcmder.ExpandPatterns([]string{filepath.Join(root, "none", "*.json")})
		Expect(err).To(MatchError(ingestcmder.ErrNoDocuments))
	})

	It("rejects malformed patterns", func() {
		_, err := ingestcmder.ExpandPatterns([]string{filepath.Join(root, "[")})
		Expect(err).To(MatchError(ContainSubstring("bad pattern")))
	})
})

var _ = Describe("Ingest command execution", func() {
	var (
		configDir string
		docDir    string
	)

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		cfg, err := config.PresetConfig("local")
		Expect(err).NotTo(HaveOccurred())
		cfger, err := config.NewConfiger(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfger.SaveConfig(cfg)).To(Succeed())

		docDir = filepath.Join(GinkgoT().TempDir(), "paper")
		_, err = testutils.WriteDocument(docDir, testutils.PaperDocument(), testutils.PaperImages...)
		Expect(err).NotTo(HaveOccurred())
	})

	It("ingests a directory and saves the store", func() {
		out, err := testutils.RunCommand(ingestcmder.NewIngestCmd(), "--config-dir", configDir, docDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Ingesting 1 documents"))
		Expect(out).To(ContainSubstring("0..1"))
		Expect(store.Exists(filepath.Join(configDir, "store"))).To(BeTrue())
	})

	It("skips documents already ingested", func() {
		_, err := testutils.RunCommand(ingestcmder.NewIngestCmd(), "--config-dir", configDir, docDir)
		Expect(err).NotTo(HaveOccurred())

		out, err := testutils.RunCommand(ingestcmder.NewIngestCmd(), "--config-dir", configDir, docDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("All 1 documents already ingested"))
	})

	It("reports figures without an image", func() {
		Expect(os.Remove(filepath.Join(docDir, "fig2.png"))).To(Succeed())

		out, err := testutils.RunCommand(ingestcmder.NewIngestCmd(), "--config-dir", configDir, docDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("paper/fig2"))
	})

	It("writes the store to --store", func() {
		storePath := filepath.Join(GinkgoT().TempDir(), "elsewhere")
		_, err := testutils.RunCommand(ingestcmder.NewIngestCmd(), "--config-dir", configDir, "--store", storePath, docDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Exists(storePath)).To(BeTrue())
		Expect(store.Exists(filepath.Join(configDir, "store"))).To(BeFalse())
	})

	It("requires at least one argument", func() {
		_, err := testutils.RunCommand(ingestcmder.NewIngestCmd(), "--config-dir", configDir)
		Expect(err).To(HaveOccurred())
	})
})
