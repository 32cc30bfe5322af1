package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/panes/internal/debug"
)

// DirectoryWatcher watches the directories shown by panes and reports each
// changed directory once its events have settled.
type DirectoryWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	watching map[string]bool
	notify   chan string
	done     chan struct{}
	debounce time.Duration
}

// NewDirectoryWatcher starts a watcher with the given debounce interval.
func NewDirectoryWatcher(debounceMs int) (*DirectoryWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounceMs <= 0 {
		debounceMs = 200
	}

	dw := &DirectoryWatcher{
		watcher:  w,
		watching: make(map[string]bool),
		notify:   make(chan string, 16),
		done:     make(chan struct{}),
		debounce: time.Duration(debounceMs) * time.Millisecond,
	}
	go dw.run()
	return dw, nil
}

func (dw *DirectoryWatcher) run() {
	lastEvent := make(map[string]time.Time)
	ticker := time.NewTicker(dw.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-dw.done:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !(event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Write)) {
				continue
			}

			// Events name the changed child; match it to its watched parent
			parent := filepath.Dir(event.Name)
			dw.mu.Lock()
			switch {
			case dw.watching[parent]:
				lastEvent[parent] = time.Now()
			case dw.watching[event.Name]:
				lastEvent[event.Name] = time.Now()
			}
			dw.mu.Unlock()
			debug.Log(debug.APP, "watch: %s %s", event.Op, event.Name)

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.APP, "watch error: %v", err)

		case now := <-ticker.C:
			for dir, at := range lastEvent {
				if now.Sub(at) < dw.debounce {
					continue
				}
				select {
				case dw.notify <- dir:
				default:
				}
				delete(lastEvent, dir)
			}
		}
	}
}

// Sync makes the watch set exactly paths.
func (dw *DirectoryWatcher) Sync(paths []string) {
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		if p != "" {
			want[p] = true
		}
	}

	dw.mu.Lock()
	defer dw.mu.Unlock()

	for p := range dw.watching {
		if !want[p] {
			if err := dw.watcher.Remove(p); err != nil {
				debug.Log(debug.APP, "unwatch %s: %v", p, err)
			}
			delete(dw.watching, p)
		}
	}
	for p := range want {
		if dw.watching[p] {
			continue
		}
		if err := dw.watcher.Add(p); err != nil {
			debug.Log(debug.APP, "watch %s: %v", p, err)
			continue
		}
		dw.watching[p] = true
	}
}

// Watching reports whether path is in the watch set.
func (dw *DirectoryWatcher) Watching(path string) bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.watching[path]
}

// Notify receives changed directory paths.
func (dw *DirectoryWatcher) Notify() <-chan string {
	return dw.notify
}

func (dw *DirectoryWatcher) Close() error {
	close(dw.done)
	return dw.watcher.Close()
}
