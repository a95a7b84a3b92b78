package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"tailorflow/internal/errors"
	"tailorflow/internal/types"

	"github.com/fsnotify/fsnotify"
)

// SettingsWatcher watches the settings file and pushes reloaded settings to
// a callback when it changes on disk. Used by long-running batch sessions so
// an edit in another terminal takes effect without a restart.
type SettingsWatcher struct {
	mu sync.Mutex

	store         *SettingsStore
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer
	onChange      func(types.Settings)
	logger        *errors.Logger
	stopChan      chan struct{}
	running       bool
}

// NewSettingsWatcher creates a watcher over the store's file. onChange runs
// on the watcher goroutine after the debounce window closes.
func NewSettingsWatcher(store *SettingsStore, debounceDelay time.Duration, onChange func(types.Settings), logger *errors.Logger) *SettingsWatcher {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}
	return &SettingsWatcher{
		store:         store,
		debounceDelay: debounceDelay,
		onChange:      onChange,
		logger:        logger,
		stopChan:      make(chan struct{}),
	}
}

// Start begins watching the settings file for changes
func (w *SettingsWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("settings watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsWatcher = watcher

	// Watch the directory rather than the file: saves are atomic renames,
	// which replace the watched inode.
	dir := filepath.Dir(w.store.Path())
	if err := os.MkdirAll(dir, 0750); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w.running = true
	go w.watchLoop()

	if w.logger != nil {
		w.logger.Debug("Settings watcher started",
			"path", w.store.Path(),
			"debounce_delay", w.debounceDelay)
	}
	return nil
}

// Stop stops the watcher
func (w *SettingsWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	if err := w.fsWatcher.Close(); err != nil {
		return err
	}
	w.running = false
	return nil
}

func (w *SettingsWatcher) watchLoop() {
	target := filepath.Base(w.store.Path())

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleReload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("Settings watcher error", "error", err)
			}

		case <-w.stopChan:
			return
		}
	}
}

// scheduleReload coalesces bursts of file events into one reload
func (w *SettingsWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		settings := w.store.Load()
		if w.logger != nil {
			w.logger.Info("Settings reloaded after file change", "path", w.store.Path())
		}
		if w.onChange != nil {
			w.onChange(settings)
		}
	})
}
