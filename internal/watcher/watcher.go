// Package watcher reports changes to the credential store file made by this
// or any other process. It only observes; it never coordinates writers.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Suffixes of side files a store backend writes next to its main file.
var sideFileSuffixes = []string{"-journal", "-wal", "-shm", ".lock"}

// Watcher monitors one file through its parent directory and fires a
// callback when the file has been quiescent for the configured duration.
// Watching the directory keeps working when the file is replaced or does not
// exist yet.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	tracker   *QuiescenceTracker
	target    string
	log       *slog.Logger
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New starts watching target. A zero debounce uses DefaultQuiescenceDuration.
func New(target string, debounce time.Duration, logger *slog.Logger, callback func(filePath string)) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultQuiescenceDuration
	}

	target, err := filepath.Abs(target)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", target, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	dir := filepath.Dir(target)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		tracker:   NewQuiescenceTracker(debounce, callback),
		target:    target,
		log:       logger.With("component", "watcher"),
		done:      make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Target is the watched file.
func (w *Watcher) Target() string { return w.target }

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if w.isRelevant(event.Name) {
				w.log.Debug("store file changed", slog.String("file", event.Name), slog.String("op", event.Op.String()))
				w.tracker.Touch(w.target)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", slog.String("error", err.Error()))

		case <-w.done:
			return
		}
	}
}

// isRelevant reports whether name is the target or one of its side files.
func (w *Watcher) isRelevant(name string) bool {
	name = filepath.Clean(name)
	if name == w.target {
		return true
	}
	if !strings.HasPrefix(name, w.target) {
		return false
	}
	rest := strings.TrimPrefix(name, w.target)
	for _, suffix := range sideFileSuffixes {
		if rest == suffix {
			return true
		}
	}
	return false
}

// Close stops the watcher. Pending callbacks are dropped.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.tracker.Stop()
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
	})
	return err
}
