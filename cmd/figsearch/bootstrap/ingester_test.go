package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/figsearch/cmd/figsearch/bootstrap"
	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/dotdir"
	"github.com/papercomputeco/figsearch/pkg/logger"
	"github.com/papercomputeco/figsearch/pkg/store"
	testutils "github.com/papercomputeco/figsearch/pkg/utils/test"
)

var _ = Describe("Ingester", func() {
	var (
		configDir string
		metaPath  string
		rt        *bootstrap.Runtime
		ingester  *bootstrap.Ingester
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		configDir = GinkgoT().TempDir()

		src, err := testutils.WriteDocument(filepath.Join(GinkgoT().TempDir(), "paper"), testutils.PaperDocument(), testutils.PaperImages...)
		Expect(err).NotTo(HaveOccurred())
		metaPath = src.MetadataPath

		cfg, err := config.PresetConfig("local")
		Expect(err).NotTo(HaveOccurred())
		storePath, err := bootstrap.ResolveStorePath("", configDir)
		Expect(err).NotTo(HaveOccurred())

		rt, err = bootstrap.NewRuntime(cfg, storePath, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(rt.Close)

		ingester = &bootstrap.Ingester{Runtime: rt, ConfigDir: configDir, Logger: logger.Nop()}
	})

	It("ingests, saves and records the file in the ledger", func() {
		report, err := ingester.Ingest(ctx, []string{metaPath})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Records).To(Equal(2))
		Expect(store.Exists(rt.StorePath)).To(BeTrue())

		ledger, err := dotdir.NewManager().LoadLedger(configDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ledger.Entries).To(HaveKey(metaPath))
		Expect(ledger.Entries[metaPath].DocName).To(Equal("paper"))
		Expect(ledger.Entries[metaPath].Records).To(Equal(2))
	})

	It("skips files the ledger holds unchanged", func() {
		_, err := ingester.Ingest(ctx, []string{metaPath})
		Expect(err).NotTo(HaveOccurred())

		report, err := ingester.Ingest(ctx, []string{metaPath})
		Expect(err).NotTo(HaveOccurred())
		Expect(report).To(BeNil())
		Expect(rt.Engine.Stats().Records).To(Equal(2))
	})

	It("ingests a file again once it changed", func() {
		_, err := ingester.Ingest(ctx, []string{metaPath})
		Expect(err).NotTo(HaveOccurred())

		later := time.Now().Add(time.Hour)
		Expect(os.Chtimes(metaPath, later, later)).To(Succeed())

		report, err := ingester.Ingest(ctx, []string{metaPath})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.FirstID).To(Equal(store.RecordID(2)))
		Expect(rt.Engine.Stats().Records).To(Equal(4))
	})

	It("ingests again when forced", func() {
		_, err := ingester.Ingest(ctx, []string{metaPath})
		Expect(err).NotTo(HaveOccurred())

		ingester.Force = true
		report, err := ingester.Ingest(ctx, []string{metaPath})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Records).To(Equal(2))
	})

	It("applies a document name override", func() {
		ingester.DocName = "Renamed"
		_, err := ingester.Ingest(ctx, []string{metaPath})
		Expect(err).NotTo(HaveOccurred())

		meta, err := rt.Engine.Record(0)
		Expect(err).NotTo(HaveOccurred())
		Expect(meta.DocName).To(Equal("Renamed"))
	})

	It("refuses a document name for several files", func() {
		ingester.DocName = "Renamed"
		_, err := ingester.Ingest(ctx, []string{metaPath, metaPath + ".other"})
		Expect(err).To(MatchError(ContainSubstring("exactly one document")))
	})

	It("fails for a missing file", func() {
		_, err := ingester.Ingest(ctx, []string{filepath.Join(configDir, "missing.json")})
		Expect(err).To(MatchError(os.ErrNotExist))
	})
})
