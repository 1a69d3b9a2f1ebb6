// Package watch re-runs validation when watched input files change.
//
// The watcher observes the parent directories of the given files (many
// editors replace files on save, which unregisters a direct file watch)
// and debounces bursts of events so one save triggers one re-check.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config contains watcher configuration.
type Config struct {
	// Files are the input files whose changes trigger the callback.
	Files []string

	// DebounceInterval is the quiet period before triggering after a
	// change (default: 200ms).
	DebounceInterval time.Duration
}

// Watcher observes rule and document files and triggers re-validation.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce *debouncer

	files map[string]struct{} // absolute paths of watched files

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher for the configured files.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.DebounceInterval
	if interval == 0 {
		interval = 200 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		logger:   logger,
		debounce: newDebouncer(interval),
		files:    make(map[string]struct{}, len(cfg.Files)),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, file := range cfg.Files {
		abs, err := filepath.Abs(file)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		w.files[abs] = struct{}{}
	}
	return w, nil
}

// Watch blocks, invoking onChange after every debounced change to a
// watched file, until the context is cancelled or Stop is called.
func (w *Watcher) Watch(ctx context.Context, onChange func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	// Watch each distinct parent directory once.
	dirs := make(map[string]struct{})
	for file := range w.files {
		dirs[filepath.Dir(file)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	w.logger.Info("watching for changes",
		"files", len(w.files),
		"directories", len(dirs),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("watch stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcess(event) {
				continue
			}
			w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
			w.debounce.trigger(func() {
				if err := onChange(); err != nil {
					w.logger.Error("re-check failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching despite transient errors.
			w.logger.Error("watch error", "error", err)
		}
	}
}

// Stop stops the watcher and waits for the watch loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	w.debounce.stop()
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, watched := w.files[abs]
	return watched
}
