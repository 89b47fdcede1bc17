package bootstrap_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/figsearch/cmd/figsearch/bootstrap"
	"github.com/papercomputeco/figsearch/pkg/config"
	"github.com/papercomputeco/figsearch/pkg/eventstream/kafka"
	"github.com/papercomputeco/figsearch/pkg/eventstream/nop"
	"github.com/papercomputeco/figsearch/pkg/ingest"
	"github.com/papercomputeco/figsearch/pkg/logger"
	"github.com/papercomputeco/figsearch/pkg/store"
	testutils "github.com/papercomputeco/figsearch/pkg/utils/test"
)

var _ = Describe("ResolveStorePath", func() {
	It("prefers an explicit path", func() {
		Expect(bootstrap.ResolveStorePath(" /srv/store ", "")).To(Equal("/srv/store"))
	})

	It("falls back to the store inside the config dir", func() {
		dir := GinkgoT().TempDir()
		path, err := bootstrap.ResolveStorePath("", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, "store")))
	})

	It("fails when no figsearch directory exists", func() {
		orig, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(GinkgoT().TempDir())).To(Succeed())
		DeferCleanup(func() { Expect(os.Chdir(orig)).To(Succeed()) })
		GinkgoT().Setenv("HOME", GinkgoT().TempDir())

		_, err = bootstrap.ResolveStorePath("", "")
		Expect(err).To(MatchError(bootstrap.ErrNoStorePath))
	})
})

var _ = Describe("NewPublisher", func() {
	It("defaults to the no-op publisher", func() {
		p, err := bootstrap.NewPublisher(config.EventsConfig{})
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&nop.Publisher{}))
	})

	It("builds a kafka publisher for the configured brokers", func() {
		p, err := bootstrap.NewPublisher(config.EventsConfig{Provider: "kafka", Brokers: []string{"localhost:9092"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		Expect(p.Close()).To(Succeed())
	})

	It("requires brokers for kafka", func() {
		_, err := bootstrap.NewPublisher(config.EventsConfig{Provider: "kafka"})
		Expect(err).To(MatchError(ContainSubstring("at least one broker")))
	})

	It("rejects unknown providers", func() {
		_, err := bootstrap.NewPublisher(config.EventsConfig{Provider: "nats"})
		Expect(err).To(MatchError("unsupported events provider: nats"))
	})
})

var _ = Describe("NewRuntime", func() {
	var (
		cfg       *config.Config
		storePath string
		source    ingest.Source
	)

	BeforeEach(func() {
		var err error
		cfg, err = config.PresetConfig("local")
		Expect(err).NotTo(HaveOccurred())

		dir := GinkgoT().TempDir()
		storePath = filepath.Join(dir, "store")
		source, err = testutils.WriteDocument(filepath.Join(dir, "doc"), testutils.PaperDocument(), testutils.PaperImages...)
		Expect(err).NotTo(HaveOccurred())
	})

	It("starts empty, ingests, saves and reloads", func() {
		rt, err := bootstrap.NewRuntime(cfg, storePath, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		Expect(rt.Report).To(BeNil())
		Expect(rt.Engine.Stats().Built).To(BeFalse())

		report, err := rt.Engine.Ingest(context.Background(), source)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Records).To(Equal(2))
		Expect(rt.Save()).To(Succeed())
		Expect(rt.Close()).To(Succeed())
		Expect(store.Exists(storePath)).To(BeTrue())

		reloaded, err := bootstrap.NewRuntime(cfg, storePath, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(reloaded.Close)
		Expect(reloaded.Report).NotTo(BeNil())
		Expect(reloaded.Report.Records).To(Equal(2))
		Expect(reloaded.Report.Mismatches).To(BeEmpty())

		results, err := reloaded.Engine.Search(context.Background(), "loss curve", bootstrap.SearchParams(cfg.Search))
		Expect(err).NotTo(HaveOccurred())
		Expect(results).NotTo(BeEmpty())
		Expect(results[0].ImageName).To(Equal("fig1"))
	})

	It("reports encoder changes on load", func() {
		rt, err := bootstrap.NewRuntime(cfg, storePath, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		_, err = rt.Engine.Ingest(context.Background(), source)
		Expect(err).NotTo(HaveOccurred())
		Expect(rt.Save()).To(Succeed())
		Expect(rt.Close()).To(Succeed())

		cfg.TextEmbedding.Dimensions = 64
		reloaded, err := bootstrap.NewRuntime(cfg, storePath, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(reloaded.Close)
		Expect(reloaded.Report.Mismatches).To(HaveLen(1))
		Expect(reloaded.Report.Mismatches[0].Channel).To(Equal("text"))
	})

	It("rejects an unknown index kind", func() {
		cfg.Store.Index = "hnsw"
		_, err := bootstrap.NewRuntime(cfg, storePath, logger.Nop())
		Expect(err).To(MatchError("unsupported vector index: hnsw"))
	})

	It("rejects an unknown text provider", func() {
		cfg.TextEmbedding.Provider = "cohere"
		_, err := bootstrap.NewRuntime(cfg, storePath, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("unsupported text embedding provider: cohere")))
	})
})
