// Package watcher reports debounced changes to dataset info files under a
// collection root.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/runmanager/internal/log"
)

// Change lists the datasets whose info file changed within one debounce window.
type Change struct {
	Datasets []string
}

// Watcher monitors a collection root and its dataset directories.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	infoFile  string
	debounce  time.Duration
	onChange  chan Change
	done      chan struct{}
	stopOnce  sync.Once
	stopErr   error
}

// Config holds watcher configuration options.
type Config struct {
	Root        string
	InfoFile    string
	DebounceDur time.Duration
}

// DefaultConfig returns defaults for watching root.
func DefaultConfig(root, infoFile string) Config {
	return Config{
		Root:        root,
		InfoFile:    infoFile,
		DebounceDur: 500 * time.Millisecond,
	}
}

// New creates a new collection watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("watcher root is empty")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      filepath.Clean(cfg.Root),
		infoFile:  cfg.InfoFile,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan Change),
		done:      make(chan struct{}),
	}, nil
}

// Start watches the root and every dataset directory beneath it.
// The returned channel receives one Change per debounce window.
func (w *Watcher) Start() (<-chan Change, error) {
	if err := w.fsWatcher.Add(w.root); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.root, err)
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", w.root, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addDir(filepath.Join(w.root, entry.Name()))
		}
	}

	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher and releases resources. Later calls return
// the first call's result.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
		w.stopErr = w.fsWatcher.Close()
	})
	return w.stopErr
}

func (w *Watcher) addDir(dir string) {
	if err := w.fsWatcher.Add(dir); err != nil {
		log.Warn(log.CatWatcher, "cannot watch dataset directory", "dir", dir, "error", err)
	}
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending = make(map[string]struct{})
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			name, relevant := w.classify(event)
			if !relevant {
				continue
			}
			pending[name] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC(timer):
			if len(pending) == 0 {
				continue
			}
			change := Change{Datasets: make([]string, 0, len(pending))}
			for name := range pending {
				change.Datasets = append(change.Datasets, name)
			}
			slices.Sort(change.Datasets)
			clear(pending)

			log.Debug(log.CatWatcher, "info files changed", "datasets", change.Datasets)
			select {
			case w.onChange <- change:
			case <-w.done:
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatcher, "watch error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// classify maps an event to the dataset it affects. New dataset directories
// are added to the watch list and reported so callers can pick them up.
func (w *Watcher) classify(event fsnotify.Event) (string, bool) {
	dir, base := filepath.Split(event.Name)
	dir = filepath.Clean(dir)

	if dir == w.root {
		if event.Op&fsnotify.Create == 0 {
			return "", false
		}
		stat, err := os.Stat(event.Name)
		if err != nil || !stat.IsDir() {
			return "", false
		}
		w.addDir(event.Name)
		if _, err := os.Stat(filepath.Join(event.Name, w.infoFile)); err != nil {
			return "", false
		}
		return base, true
	}

	if filepath.Dir(dir) != w.root || base != w.infoFile {
		return "", false
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	return filepath.Base(dir), true
}
