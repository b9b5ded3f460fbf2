package resource

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads the entire resource tree from disk whenever a file
// under it changes, debounced so a burst of saves triggers one reload.
// Grounded on the teacher's fsnotify-based debounce loop
// (internal/core/mangle_watcher.go): on every event a single watcher
// goroutine stops any pending time.AfterFunc timer and starts a new
// one, so a reload fires only once no new event has arrived within the
// debounce window.
type Watcher struct {
	root        string
	log         *zap.Logger
	debounce    time.Duration
	watcher     *fsnotify.Watcher
	onReload    func(*Registry, error)
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewWatcher creates a Watcher over root. onReload is called with the
// freshly loaded Registry (or a non-nil error) after each debounced
// burst of filesystem events.
func NewWatcher(root string, log *zap.Logger, onReload func(*Registry, error)) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		root:     root,
		log:      log,
		debounce: 500 * time.Millisecond,
		watcher:  fw,
		onReload: onReload,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching root (recursively) in a background goroutine.
// It is non-blocking; call Stop to shut it down.
func (w *Watcher) Start(ctx context.Context) error {
	if err := addRecursive(w.watcher, w.root); err != nil {
		return err
	}
	go w.run(ctx)
	return nil
}

// addRecursive registers every directory under root with fw: fsnotify
// watches are not recursive on their own, so the resource tree's
// nested category directories (sheets/monsters/, etc.) each need their
// own watch.
func addRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // missing top-level dirs are non-fatal elsewhere; skip here too
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)
	var timer *time.Timer
	reload := func() {
		reg, err := Load(w.root, w.log)
		w.onReload(reg, err)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.log.Debug("resource tree change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, reload)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("resource watcher error", zap.Error(err))
		}
	}
}

// Stop halts the watcher and releases its filesystem handle.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}
