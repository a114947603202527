// Package watch re-runs extraction when the page under observation changes.
//
// A saved page file is watched with fsnotify; a remote page, which offers no
// change notification, is polled. Both coalesce bursts of changes and call
// back once the page has been quiet for the debounce delay, mirroring how a
// navigation inside a pull request waits for the new view to render.
package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/prtasks/internal/logging"
)

// DefaultDebounce is the quiet period after the last change before the
// callback runs.
const DefaultDebounce = 1500 * time.Millisecond

// Watcher reports changes to one page through a callback.
type Watcher interface {
	SetCallback(cb func())
	Start()
	Stop()
}

// FileWatcher watches a saved page. It subscribes to the file's directory
// because editors and browsers usually save by writing a temporary file and
// renaming it over the original.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	logger   *logging.Logger

	mu       sync.RWMutex
	onChange func()
	started  bool

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewFileWatcher creates a watcher for the page at path. A non-positive
// debounce uses DefaultDebounce.
func NewFileWatcher(path string, debounce time.Duration, logger *logging.Logger) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve page path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("page file does not exist: %s", abs)
		}
		return nil, fmt.Errorf("failed to stat page file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("page path is a directory: %s", abs)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &FileWatcher{
		watcher:  watcher,
		path:     abs,
		debounce: debounce,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetCallback sets the function called after the page changes.
func (w *FileWatcher) SetCallback(cb func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = cb
}

// Path returns the absolute path being watched.
func (w *FileWatcher) Path() string {
	return w.path
}

// Start begins watching for changes.
func (w *FileWatcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	go w.watchLoop()
}

// Stop stops the watcher and waits for a running callback to return.
// It is safe to call more than once.
func (w *FileWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})

	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if started {
		<-w.doneCh
	}
}

// watchLoop processes filesystem events
func (w *FileWatcher) watchLoop() {
	defer close(w.doneCh)

	debounceTimer := time.NewTimer(w.debounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("page file changed", "path", event.Name, "op", event.Op.String())
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			w.fire()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err.Error())
		}
	}
}

// relevant reports whether event replaces or rewrites the watched file.
func (w *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *FileWatcher) fire() {
	w.mu.RLock()
	cb := w.onChange
	w.mu.RUnlock()

	if cb != nil {
		cb()
	}
}

// New returns a FileWatcher for saved pages and a Poller for remote ones.
func New(target string, remote bool, debounce, pollInterval time.Duration, logger *logging.Logger) (Watcher, error) {
	if remote {
		return NewPoller(pollInterval, logger), nil
	}
	return NewFileWatcher(target, debounce, logger)
}
