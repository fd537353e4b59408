package ingest

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"readily-hq/auditor/pkg/telemetry/metrics"
)

// Watcher reports PDFs that arrive under the policies directory after
// startup ingestion has run. The store is immutable once populated, so
// new files are not indexed live; the watcher logs them and keeps a
// pending gauge so operators know a restart will pick them up.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher
	metrics *metrics.Collector
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewWatcher creates a watcher over the policies directory tree.
func NewWatcher(dir string, mc *metrics.Collector) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:     dir,
		watcher: fsw,
		metrics: mc,
		logger:  slog.Default().With("component", "ingest.watcher"),
		pending: make(map[string]struct{}),
	}

	// fsnotify watches are not recursive; register every subdirectory.
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("policies directory watcher started", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			w.logger.Info("policies directory watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}

	// New subdirectories must be watched too.
	if isDir(event.Name) {
		if err := w.watcher.Add(event.Name); err != nil {
			w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
		}
		return
	}

	if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = struct{}{}
	n := len(w.pending)
	w.mu.Unlock()

	w.metrics.SetPendingDocuments(n)
	w.logger.Info("new policy PDF detected; will be indexed on next restart",
		"file", filepath.Base(event.Name),
		"pending", n,
	)
}

// Pending returns the files seen since startup.
func (w *Watcher) Pending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make([]string, 0, len(w.pending))
	for f := range w.pending {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
