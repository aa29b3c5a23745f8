// Package watch re-runs verification when a watched event log changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// LogWatcher monitors event log files and triggers re-verification.
type LogWatcher struct {
	watcher  *fsnotify.Watcher
	logs     map[string]*logState
	mu       sync.RWMutex
	debounce time.Duration

	// OnChange runs after a watched log settles. Errors are routed to OnError.
	OnChange func(ctx context.Context, path string) error
	OnError  func(path string, err error)
}

type logState struct {
	path         string
	lastModified time.Time
	size         int64
	verifying    bool
}

// NewLogWatcher creates a watcher with a half second debounce, enough to
// let log exporters finish writing before a verification run starts.
func NewLogWatcher() (*LogWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	return &LogWatcher{
		watcher:  fsWatcher,
		logs:     make(map[string]*logState),
		debounce: 500 * time.Millisecond,
	}, nil
}

// Watch starts watching an event log file.
func (w *LogWatcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("failed to stat log: %w", err)
	}

	w.mu.Lock()
	w.logs[absPath] = &logState{
		path:         absPath,
		lastModified: stat.ModTime(),
		size:         stat.Size(),
	}
	w.mu.Unlock()

	// Watch the directory containing the file (fsnotify works better this way)
	dir := filepath.Dir(absPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	return nil
}

// Run starts the watch loop. Blocks until the context is cancelled.
func (w *LogWatcher) Run(ctx context.Context) error {
	debounceTimers := make(map[string]*time.Timer)
	var timerMu sync.Mutex

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			absPath, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}

			w.mu.RLock()
			state, isWatched := w.logs[absPath]
			w.mu.RUnlock()

			if !isWatched {
				continue
			}

			// Debounce rapid changes
			timerMu.Lock()
			if timer, exists := debounceTimers[absPath]; exists {
				timer.Stop()
			}
			debounceTimers[absPath] = time.AfterFunc(w.debounce, func() {
				w.verify(ctx, absPath, state)
			})
			timerMu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError("", err)
			}
		}
	}
}

func (w *LogWatcher) verify(ctx context.Context, path string, state *logState) {
	w.mu.Lock()
	if state.verifying {
		w.mu.Unlock()
		return
	}
	state.verifying = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		state.verifying = false
		w.mu.Unlock()
	}()

	stat, err := os.Stat(path)
	if err != nil {
		if w.OnError != nil {
			w.OnError(path, err)
		}
		return
	}

	// Skip spurious events where the content did not change
	if stat.ModTime().Equal(state.lastModified) && stat.Size() == state.size {
		return
	}

	w.mu.Lock()
	state.lastModified = stat.ModTime()
	state.size = stat.Size()
	w.mu.Unlock()

	if w.OnChange != nil {
		if err := w.OnChange(ctx, path); err != nil {
			if w.OnError != nil {
				w.OnError(path, err)
			}
		}
	}
}

// Close stops the watcher.
func (w *LogWatcher) Close() error {
	return w.watcher.Close()
}
