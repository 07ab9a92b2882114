// Package watcher re-runs a handler when watched part files settle after a
// change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrClosed is returned when adding files to a closed watcher.
var ErrClosed = errors.New("watcher closed")

// Handler receives the absolute path of a file that settled.
type Handler func(path string)

// target is one watched file. seq identifies the latest change so a timer
// that lost a race with a newer change does not fire.
type target struct {
	handle Handler
	timer  *time.Timer
	seq    uint64
}

// Watcher watches part files through their parent directories, so saves
// that replace a file by rename are still seen.
type Watcher struct {
	fs    *fsnotify.Watcher
	quiet time.Duration
	log   *zap.Logger

	mu      sync.Mutex
	targets map[string]*target
	dirs    map[string]int // watched directory -> targets inside it
	closed  bool
}

// New creates a watcher that waits quiet after the last change of a file
// before calling its handler. A nil logger logs nothing.
func New(quiet time.Duration, log *zap.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		fs:      fs,
		quiet:   quiet,
		log:     log,
		targets: make(map[string]*target),
		dirs:    make(map[string]int),
	}, nil
}

// Add watches files with one handler. Re-adding a file replaces its handler.
func (w *Watcher) Add(handle Handler, files ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	for _, f := range files {
		path, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		if t, ok := w.targets[path]; ok {
			t.handle = handle
			continue
		}
		dir := filepath.Dir(path)
		if w.dirs[dir] == 0 {
			if err := w.fs.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}
		w.dirs[dir]++
		w.targets[path] = &target{handle: handle}
	}
	return nil
}

// Remove stops watching files. A directory is released with its last file.
func (w *Watcher) Remove(files ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, f := range files {
		path, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", f, err)
		}
		if err := w.drop(path); err != nil {
			return err
		}
	}
	return nil
}

// Clear stops watching every file.
func (w *Watcher) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path := range w.targets {
		if err := w.drop(path); err != nil {
			return err
		}
	}
	return nil
}

// drop forgets one target. Callers hold mu.
func (w *Watcher) drop(path string) error {
	t, ok := w.targets[path]
	if !ok {
		return nil
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	delete(w.targets, path)

	dir := filepath.Dir(path)
	if w.dirs[dir]--; w.dirs[dir] > 0 {
		return nil
	}
	delete(w.dirs, dir)
	if w.closed {
		return nil
	}
	if err := w.fs.Remove(dir); err != nil {
		return fmt.Errorf("unwatch %s: %w", dir, err)
	}
	return nil
}

// Watched returns how many files are watched.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.targets)
}

// Run delivers change events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			switch {
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
				w.touch(ev.Name)
			case ev.Has(fsnotify.Remove):
				w.settle(ev.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// touch records a change and restarts the file's quiet period.
func (w *Watcher) touch(name string) {
	path := filepath.Clean(name)

	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.targets[path]
	if !ok || w.closed {
		return
	}
	t.seq++
	seq := t.seq
	if t.timer != nil {
		t.timer.Stop()
	}
	w.log.Debug("file changed", zap.String("file", path))
	t.timer = time.AfterFunc(w.quiet, func() { w.fire(path, seq) })
}

// settle cancels a pending change of a file that was deleted. A rename-save
// brings a Create right after, which starts a new quiet period.
func (w *Watcher) settle(name string) {
	path := filepath.Clean(name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.targets[path]; ok && t.timer != nil {
		t.timer.Stop()
		t.seq++
	}
}

func (w *Watcher) fire(path string, seq uint64) {
	w.mu.Lock()
	t, ok := w.targets[path]
	if !ok || t.seq != seq || w.closed {
		w.mu.Unlock()
		return
	}
	handle := t.handle
	w.mu.Unlock()

	handle(path)
}

// Close stops pending handlers and the underlying watcher. Closing twice is
// a no-op.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for _, t := range w.targets {
		if t.timer != nil {
			t.timer.Stop()
		}
	}
	w.mu.Unlock()
	return w.fs.Close()
}
