package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a manifest's directory tree and signals when a reload is due. It never reloads by
// itself: the frame loop drains Requests at the top of a frame and calls Store.Reload, so assets are
// only swapped between frames.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	requests chan string
	done     chan struct{}
	wg       sync.WaitGroup

	mu       sync.Mutex
	isClosed bool
}

// NewWatcher starts watching the directory holding manifestPath and every directory below it.
//
// Parameters:
//   - manifestPath: the manifest file whose directory is watched
//
// Returns:
//   - *Watcher: the running watcher
//   - error: an error if the platform watcher cannot be created or a directory cannot be added
func NewWatcher(manifestPath string) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsnotify: fsWatch,
		requests: make(chan string, 1),
		done:     make(chan struct{}),
	}
	if err := w.watchRecursive(filepath.Dir(manifestPath)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Requests delivers the path of a changed file. Bursts of changes collapse into one pending request.
func (w *Watcher) Requests() <-chan string {
	return w.requests
}

// Pending reports whether a reload request is waiting, consuming it.
func (w *Watcher) Pending() bool {
	select {
	case path := <-w.requests:
		log.Debug("reload requested by %s", path)
		return true
	default:
		return false
	}
}

// Close stops the watcher. Calling Close more than once is a no-op.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.isClosed {
		w.mu.Unlock()
		return nil
	}
	w.isClosed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	return w.fsnotify.Close()
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := w.watchRecursive(e.Name); err != nil {
						log.Warn("failed to watch new directory %s: %v", e.Name, err)
					}
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case w.requests <- e.Name:
			default:
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			log.Error("asset watcher: %v", err)

		case <-w.done:
			return
		}
	}
}

// watchRecursive adds root and every directory under it to the watch list.
func (w *Watcher) watchRecursive(root string) error {
	w.mu.Lock()
	closed := w.isClosed
	w.mu.Unlock()
	if closed {
		return errors.New("asset watcher already closed")
	}
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(path)
		}
		return nil
	})
}
