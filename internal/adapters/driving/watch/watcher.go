// Package watch re-ingests documents as they change on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// DefaultDebounce batches rapid successive writes (editors often write
// a file several times in one save) into a single re-ingestion.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes a directory tree and keeps the index in sync:
// created and modified documents are re-ingested, removed documents are
// dropped from the index.
type Watcher struct {
	pipeline  driving.Pipeline
	supported map[string]struct{}
	debounce  time.Duration
}

// New creates a watcher for the given supported extensions.
func New(pipeline driving.Pipeline, extensions []string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	supported := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		supported[strings.ToLower(ext)] = struct{}{}
	}
	return &Watcher{
		pipeline:  pipeline,
		supported: supported,
		debounce:  debounce,
	}
}

// Run watches dir recursively until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, dir); err != nil {
		return err
	}
	logger.Info("watch: observing %s", dir)

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(ctx, watcher, event, pending) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)

		case <-timer.C:
			w.flush(ctx, pending)
		}
	}
}

// handleEvent updates the pending set for one filesystem event and
// reports whether the debounce timer should restart.
func (w *Watcher) handleEvent(ctx context.Context, watcher *fsnotify.Watcher, event fsnotify.Event, pending map[string]struct{}) bool {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := addRecursive(watcher, event.Name); err != nil {
				logger.Warn("watch: adding %s: %v", event.Name, err)
			}
			return false
		}
	}

	if !w.relevant(event.Name) {
		return false
	}

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		delete(pending, event.Name)
		w.removeDocument(ctx, event.Name)
		return false
	}

	if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
		pending[event.Name] = struct{}{}
		return true
	}
	return false
}

// flush re-ingests everything accumulated during the debounce window.
func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}

	paths := make([]string, 0, len(pending))
	for path := range pending {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		delete(pending, path)
	}

	for _, result := range w.pipeline.IngestAll(ctx, paths) {
		switch result.Outcome {
		case driving.IngestProcessed:
			logger.Info("watch: indexed %s (%d fragments)", result.Path, result.Fragments)
		case driving.IngestSkipped:
			logger.Debug("watch: %s unchanged", result.Path)
		case driving.IngestFailed:
			logger.Warn("watch: %s failed: %v", result.Path, result.Err)
		}
	}
}

// removeDocument drops a deleted file from the index.
func (w *Watcher) removeDocument(ctx context.Context, path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	docID := domain.DocumentID(abs)
	if err := w.pipeline.Remove(ctx, docID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("watch: removing %s: %v", path, err)
		}
		return
	}
	logger.Info("watch: removed %s", path)
}

// relevant reports whether path has a supported extension.
func (w *Watcher) relevant(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	_, ok := w.supported[ext]
	return ok
}

// addRecursive watches dir and all its subdirectories, skipping hidden
// ones.
func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
