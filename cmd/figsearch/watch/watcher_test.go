package watchcmder_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	watchcmder "github.com/papercomputeco/figsearch/cmd/figsearch/watch"
	"github.com/papercomputeco/figsearch/pkg/logger"
)

var _ = Describe("Watcher", func() {
	var (
		root    string
		mu      sync.Mutex
		batches [][]string
		cancel  context.CancelFunc
		done    chan error
	)

	received := func() [][]string {
		mu.Lock()
		defer mu.Unlock()
		return append([][]string(nil), batches...)
	}

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		batches = nil

		w := &watchcmder.Watcher{
			Root:     root,
			FileName: "metadata.json",
			Settle:   50 * time.Millisecond,
			Logger:   logger.Nop(),
			OnBatch: func(_ context.Context, paths []string) error {
				mu.Lock()
				defer mu.Unlock()
				batches = append(batches, paths)
				return nil
			},
		}

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		// Give the watcher time to register the root.
		time.Sleep(100 * time.Millisecond)
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})

	It("reports metadata files written under the root", func() {
		path := filepath.Join(root, "metadata.json")
		Expect(os.WriteFile(path, []byte("{}"), 0o644)).To(Succeed())

		Eventually(received).Should(ContainElement([]string{path}))
	})

	It("ignores other files", func() {
		Expect(os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644)).To(Succeed())
		Consistently(received, 300*time.Millisecond).Should(BeEmpty())
	})

	It("follows new directories and files already inside them", func() {
		staged := filepath.Join(GinkgoT().TempDir(), "doc")
		Expect(os.MkdirAll(staged, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(staged, "metadata.json"), []byte("{}"), 0o644)).To(Succeed())

		moved := filepath.Join(root, "doc")
		Expect(os.Rename(staged, moved)).To(Succeed())

		Eventually(received).Should(ContainElement([]string{filepath.Join(moved, "metadata.json")}))
	})

	It("collects a burst of changes into one batch", func() {
		for _, d := range []string{"a", "b"} {
			Expect(os.MkdirAll(filepath.Join(root, d), 0o755)).To(Succeed())
		}
		time.Sleep(100 * time.Millisecond)
		for _, d := range []string{"b", "a"} {
			Expect(os.WriteFile(filepath.Join(root, d, "metadata.json"), []byte("{}"), 0o644)).To(Succeed())
		}

		Eventually(received).Should(ContainElement([]string{
			filepath.Join(root, "a", "metadata.json"),
			filepath.Join(root, "b", "metadata.json"),
		}))
	})
})
