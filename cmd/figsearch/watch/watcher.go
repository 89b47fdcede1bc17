package watchcmder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports metadata files created or rewritten under a directory tree.
// Events are collected until the tree has been quiet for Settle, then handed
// to OnBatch together, sorted.
type Watcher struct {
	Root     string
	FileName string
	Settle   time.Duration
	OnBatch  func(ctx context.Context, paths []string) error
	Logger   *slog.Logger
}

// Run watches until ctx is done. Directories created while running are
// watched too. OnBatch failures are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if _, err := w.addTree(fw, w.Root); err != nil {
		return err
	}

	pending := map[string]bool{}
	timer := time.NewTimer(w.Settle)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				found, err := w.addTree(fw, event.Name)
				if err != nil {
					w.Logger.Warn("watching new directory failed", "path", event.Name, "error", err)
				}
				for _, p := range found {
					pending[p] = true
				}
				if len(found) > 0 {
					timer.Reset(w.Settle)
				}
				continue
			}
			if filepath.Base(event.Name) != w.FileName {
				continue
			}

			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			pending[abs] = true
			timer.Reset(w.Settle)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)

			if err := w.OnBatch(ctx, paths); err != nil {
				w.Logger.Error("ingesting changed documents failed", "documents", len(paths), "error", err)
			}
		}
	}
}

// addTree watches dir and every directory below it and returns the metadata
// files already there. A directory can be filled before its watch is added.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			if d.Name() == w.FileName {
				if abs, err := filepath.Abs(path); err == nil {
					found = append(found, abs)
				}
			}
			return nil
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
	return found, err
}
