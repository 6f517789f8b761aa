// Package watch re-runs a callback whenever a file is saved, the file analogue of
// editing a form field by field.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"resumebuilder/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors emit for one save
const DefaultDebounce = 200 * time.Millisecond

// FileWatcher watches a single file through its parent directory, so editors that
// save by rename keep being observed.
type FileWatcher struct {
	file     string
	debounce time.Duration
	onChange func(ctx context.Context) error
	logger   *errors.Logger

	mu            sync.Mutex
	lastModTime   time.Time
	debounceTimer *time.Timer
	reloadChan    chan struct{}
}

// NewFileWatcher creates a watcher calling onChange after each save of file.
// A non-positive debounce uses DefaultDebounce.
func NewFileWatcher(file string, debounce time.Duration, onChange func(ctx context.Context) error, logger *errors.Logger) *FileWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		file:       filepath.Clean(file),
		debounce:   debounce,
		onChange:   onChange,
		logger:     logger,
		reloadChan: make(chan struct{}, 1),
	}
}

// Run calls onChange once, then again after every change, until ctx is canceled.
// Errors from onChange are logged and watching continues.
func (fw *FileWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil {
			fw.logger.LogError(closeErr, "Failed to close file watcher")
		}
	}()

	dir := filepath.Dir(fw.file)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	fw.hasFileChanged()
	fw.invoke(ctx)
	fw.logger.Info("Watching for changes", "file", fw.file)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if fw.shouldProcessEvent(event) {
				fw.scheduleReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.LogError(err, "File watcher error")

		case <-fw.reloadChan:
			// Debounced reload trigger
			if fw.hasFileChanged() {
				fw.logger.Debug("File changed, re-rendering", "file", fw.file)
				fw.invoke(ctx)
			}

		case <-ctx.Done():
			fw.stopTimer()
			return nil
		}
	}
}

func (fw *FileWatcher) invoke(ctx context.Context) {
	if err := fw.onChange(ctx); err != nil {
		fw.logger.LogError(err, "Failed to process change", "file", fw.file)
	}
}

// shouldProcessEvent determines if a file system event should trigger a reload check
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.file && filepath.Base(event.Name) != filepath.Base(fw.file) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// hasFileChanged reports whether the file's modification time moved forward
func (fw *FileWatcher) hasFileChanged() bool {
	stat, err := os.Stat(fw.file)
	if err != nil {
		return false
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if stat.ModTime().After(fw.lastModTime) {
		fw.lastModTime = stat.ModTime()
		return true
	}
	return false
}

// scheduleReload schedules a debounced reload
func (fw *FileWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	// Reset the debounce timer
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.debounce, func() {
		select {
		case fw.reloadChan <- struct{}{}:
		default:
			// Reload already scheduled
		}
	})
}

func (fw *FileWatcher) stopTimer() {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
}
