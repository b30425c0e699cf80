package vfs

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

var skipDirs = []string{".git", "target", "node_modules"}

// Watcher drops cached disk content when files change underneath the
// store. Open documents are unaffected; the editor owns them.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher watches every directory below the given roots.
func NewWatcher(store *Store, logger *slog.Logger, roots ...string) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{store: store, watcher: fw, logger: logger, done: make(chan struct{})}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func skipped(path string) bool {
	base := filepath.Base(path)
	for _, name := range skipDirs {
		if base == name {
			return true
		}
	}
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && skipped(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Run processes events until ctx is done or Stop is called.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("vfs watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if ev.Has(fsnotify.Create) {
		if err := w.addRecursive(ev.Name); err != nil {
			w.logger.Debug("vfs watch add failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
		}
	}
	if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		w.store.Invalidate(filepath.Clean(ev.Name))
	}
}

// Stop releases the underlying watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
	})
}
