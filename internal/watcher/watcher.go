// Package watcher publishes config-change events when watched files are
// rewritten. Editors replace files rather than write in place, so the parent
// directories are watched and events are filtered down to the named files.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"switchboard/internal/event"
	"switchboard/internal/logging"
)

// Writes arrive in bursts (truncate, write, chmod, rename); collapse each
// burst into one event per file.
const debounceDelay = 300 * time.Millisecond

type Watcher struct {
	fs      *fsnotify.Watcher
	bus     *event.Bus[event.Event]
	logger  *logging.Logger
	watched map[string]bool

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  chan struct{}
}

// New watches the given files. Files that do not exist yet are still
// covered, since their directories are what fsnotify tracks.
func New(paths []string, bus *event.Bus[event.Event], logger *logging.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fs:      fs,
		bus:     bus,
		logger:  logger,
		watched: make(map[string]bool),
		pending: make(map[string]*time.Timer),
		closed:  make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, path := range paths {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		w.watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fs.Add(dir); err != nil {
			w.logger.Warn("cannot watch directory", map[string]string{
				"dir":   dir,
				"error": err.Error(),
			})
		}
	}

	go w.loop()
	return w, nil
}

func (w *Watcher) Close() error {
	close(w.closed)
	return w.fs.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", map[string]string{"error": err.Error()})
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
		!ev.Op.Has(fsnotify.Rename) && !ev.Op.Has(fsnotify.Remove) {
		return
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil || !w.watched[abs] {
		return
	}
	operation := ev.Op.String()

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[abs]; ok {
		timer.Stop()
	}
	w.pending[abs] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, abs)
		w.mu.Unlock()

		select {
		case <-w.closed:
			return
		default:
		}
		w.logger.Info("config file changed", map[string]string{
			"path": abs,
			"op":   operation,
		})
		if w.bus != nil {
			w.bus.Publish(event.NewConfigEvent(abs, operation))
		}
	})
}
