package config

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// settle is how long a burst of writes must be quiet before a reload.
const settle = 50 * time.Millisecond

// LayoutWatcher reloads a layout file whenever it changes on disk.
// Callbacks run on the watcher's goroutine; UI code has to hand the layout
// over to its own goroutine.
type LayoutWatcher struct {
	path string
	fsw  *fsnotify.Watcher
	log  *log.Logger

	mu        sync.Mutex
	callbacks []func(*Layout)
	timer     *time.Timer

	done chan struct{}
}

// WatchLayout starts watching path. The directory is watched rather than
// the file, so editors that replace the file are followed.
func WatchLayout(path string, logger *log.Logger) (*LayoutWatcher, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &LayoutWatcher{path: abs, fsw: fsw, log: logger, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

// OnChange registers fn for every successfully parsed layout.
func (w *LayoutWatcher) OnChange(fn func(*Layout)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

func (w *LayoutWatcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *LayoutWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.timer = time.AfterFunc(settle, w.reload)
			w.mu.Unlock()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("layout watcher", "err", err)
		}
	}
}

func (w *LayoutWatcher) reload() {
	l, err := LoadLayout(w.path)
	if err != nil {
		// keep the current ribbon until the file is fixed
		w.log.Warn("layout not reloaded", "err", err)
		return
	}
	w.log.Info("layout reloaded", "path", w.path, "tabs", len(l.Tabs))

	w.mu.Lock()
	callbacks := append(([]func(*Layout))(nil), w.callbacks...)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(l)
	}
}
