package startpage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultWatchDebounce = 250 * time.Millisecond

// Reloader re-reads persisted state.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// ConfigWatcher reloads the store when the config file changes on disk.
// The parent directory is watched so atomic rename writes are observed.
type ConfigWatcher struct {
	path     string
	reloader Reloader
	debounce time.Duration
	logger   *slog.Logger
}

// NewConfigWatcher watches path and calls reloader after writes settle.
func NewConfigWatcher(path string, reloader Reloader, logger *slog.Logger) *ConfigWatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ConfigWatcher{
		path:     filepath.Clean(path),
		reloader: reloader,
		debounce: defaultWatchDebounce,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("startpage: create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("startpage: watch %s: %w", w.path, err)
	}

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			trigger = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("startpage: watcher error", "error", err)
		case <-trigger:
			trigger = nil
			changed, err := w.reloader.Reload(ctx)
			if err != nil {
				w.logger.Warn("startpage: reload failed", "path", w.path, "error", err)
				continue
			}
			if changed {
				w.logger.Info("startpage: config reloaded", "path", w.path)
			}
		}
	}
}
