// Package watch signals when the persisted backlog file changes on
// disk. Other sunwell processes (or a human with an editor) can mutate
// the state file; the watcher lets the running scheduler notice and
// reload instead of polling.
package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lbliii/sunwell/internal/logging"
)

// debounceWindow collapses the event bursts editors and atomic
// rename-into-place writes produce for a single logical save.
const debounceWindow = 50 * time.Millisecond

// Watcher observes a single state file and delivers a notification per
// logical change.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	changes chan struct{}
	log     *logging.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// New creates a Watcher for the given file. The file's parent
// directory is watched rather than the file itself so atomic
// rename-into-place writes are observed. Call Start to begin
// delivering notifications.
func New(path string, log *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	if log == nil {
		log = logging.Nop()
	}

	return &Watcher{
		watcher: fw,
		path:    filepath.Clean(path),
		changes: make(chan struct{}, 1),
		log:     log,
		stopCh:  make(chan struct{}),
	}, nil
}

// Changes returns the notification channel. It carries at most one
// pending notification; coalescing is fine because consumers reload
// the whole state file.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching for file changes.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher and cleans up resources.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

// watchLoop processes filesystem events.
func (w *Watcher) watchLoop() {
	// Debounce events - a single save can produce several events
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	pending := false

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Only care about operations that change file content
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}

			pending = true
			debounceTimer.Reset(debounceWindow)

		case <-debounceTimer.C:
			if !pending {
				continue
			}
			pending = false

			w.log.Debug("state file changed", "path", w.path)
			select {
			case w.changes <- struct{}{}:
			default:
				// A notification is already pending; the consumer
				// will see the latest state when it reloads.
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)
		}
	}
}
