package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the registry whenever one of the catalog files changes.
type Watcher struct {
	loader   *Loader
	onReload func(*Registry)
	logger   *slog.Logger

	// settle delays the reload so editors that write in several steps
	// trigger one reload instead of several.
	settle time.Duration
}

// NewWatcher creates a watcher that calls onReload with each freshly loaded registry.
func NewWatcher(loader *Loader, onReload func(*Registry), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		loader:   loader,
		onReload: onReload,
		logger:   logger,
		settle:   250 * time.Millisecond,
	}
}

// Run watches the catalog files until ctx is cancelled.
// The directories are watched rather than the files so that editors that
// replace a file via rename are still noticed.
func (w *Watcher) Run(ctx context.Context) (err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	watched := make(map[string]bool)
	for _, path := range w.loader.Paths() {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		watched[abs] = true

		dir := filepath.Dir(abs)
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(w.settle)
			}
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Catalog watcher error", "error", werr)
		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	reg, err := w.loader.Load()
	if err != nil {
		w.logger.Error("Catalog reload failed", "error", err)
		return
	}
	w.logger.Info("Catalog reloaded", "cards", len(reg.Cards()), "sets", len(reg.Codes()))
	w.onReload(reg)
}
