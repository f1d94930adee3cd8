package scene

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/gogpu/rendergraph"
)

// ErrWatcherClosed is returned by Add after Close.
var ErrWatcherClosed = errors.New("scene: watcher closed")

// Watcher reports writes to a set of files. Directories are watched rather
// than the files so editors that replace files on save are still seen.
type Watcher struct {
	fs *fsnotify.Watcher

	mu     sync.Mutex
	files  map[string]bool
	dirs   map[string]bool
	closed bool

	changes chan string
	errs    chan error
}

// Watch returns a watcher for the scene file and every file it references.
func Watch(path string, s *Scene) (*Watcher, error) {
	w, err := NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(append([]string{path}, s.Files()...)...); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

// NewWatcher returns a watcher with no files. Call Run to start delivery.
func NewWatcher() (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scene: watcher: %w", err)
	}
	return &Watcher{
		fs:      fs,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
		changes: make(chan string, 1),
		errs:    make(chan error, 1),
	}, nil
}

// Add starts watching paths.
func (w *Watcher) Add(paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("scene: watch %s: %w", p, err)
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("scene: watch %s: %w", dir, err)
		}
		w.dirs[dir] = true
	}
	return nil
}

// Changes delivers the path of a changed file. Bursts coalesce: only one
// change is buffered while the receiver is busy.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Errors delivers watcher errors. Errors are dropped while one is pending.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Run forwards events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !e.Op.Has(fsnotify.Create) && !e.Op.Has(fsnotify.Write) {
				continue
			}
			if !w.watching(e.Name) {
				continue
			}
			rendergraph.Logger().Debug("scene file changed", "path", e.Name, "op", e.Op.String())
			select {
			case w.changes <- e.Name:
			default:
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) watching(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fs.Close()
}
