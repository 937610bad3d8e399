package storage

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"markan/pkg/logging"
	"markan/pkg/performance"
)

// Watcher reports changes to note files in the open workspace. Bursts of
// events (an editor saving through a temp file, a sync client) are collapsed
// into a single callback per directory.
type Watcher struct {
	watcher   *fsnotify.Watcher
	isNote    func(name string) bool
	onChange  func(dir string)
	debouncer *performance.Debouncer
	logger    *logging.Logger

	mutex sync.Mutex
	dir   string
	done  chan struct{}
}

// NewWatcher starts an idle watcher. isNote filters event paths; onChange is
// called with the watched directory after delay has passed without events.
func NewWatcher(isNote func(name string) bool, delay time.Duration, onChange func(dir string), logger *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Nop()
	}

	w := &Watcher{
		watcher:   fw,
		isNote:    isNote,
		onChange:  onChange,
		debouncer: performance.NewDebouncer(delay),
		logger:    logger.Named("watcher"),
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Watch switches the watcher to dir. An empty dir stops watching.
func (w *Watcher) Watch(dir string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.dir == dir {
		return nil
	}
	if w.dir != "" {
		if err := w.watcher.Remove(w.dir); err != nil {
			w.logger.Debug("could not unwatch directory", zap.String("dir", w.dir), zap.Error(err))
		}
		w.debouncer.Cancel(w.dir)
		w.dir = ""
	}
	if dir == "" {
		return nil
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}
	w.dir = dir
	w.logger.Info("watching workspace", zap.String("dir", dir))
	return nil
}

// Dir returns the directory being watched.
func (w *Watcher) Dir() string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.dir
}

// Close stops the watcher and drops pending callbacks. No callback runs
// after Close returns.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	w.debouncer.Clear()
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !w.isNote(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	dir := w.Dir()
	if dir == "" {
		return
	}
	w.logger.Debug("note file event", zap.String("op", event.Op.String()), zap.String("path", event.Name))
	w.debouncer.Debounce(dir, func() {
		if w.Dir() == dir {
			w.onChange(dir)
		}
	})
}
