package loader

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to the files it has been asked to watch. Changed
// and Errors are closed once Close returns.
type Watcher struct {
	watcher *fsnotify.Watcher
	changed chan string
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup

	mu        sync.Mutex
	watched   map[string]bool
	closeOnce sync.Once
}

// NewWatcher starts a watcher goroutine.
func NewWatcher() (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		watcher: watcher,
		changed: make(chan string),
		errors:  make(chan error),
		done:    make(chan struct{}),
		watched: map[string]bool{},
	}
	w.wg.Add(1)
	go w.forward()
	return w, nil
}

func (w *Watcher) forward() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case w.changed <- filepath.ToSlash(event.Name):
			case <-w.done:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			case <-w.done:
				return
			}
		case <-w.done:
			return
		}
	}
}

// Add watches name. Adding the same name twice is a no-op.
func (w *Watcher) Add(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watched[name] {
		return nil
	}
	if err := w.watcher.Add(name); err != nil {
		return err
	}
	w.watched[name] = true
	return nil
}

// Changed receives the slash separated path of every written file.
func (w *Watcher) Changed() <-chan string {
	return w.changed
}

// Errors receives the errors reported by fsnotify.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher goroutine and releases the fsnotify watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
		close(w.changed)
		close(w.errors)
	})
	return err
}
