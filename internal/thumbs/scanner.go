// Package thumbs scans a directory for images in the background and delivers
// decoded thumbnails incrementally through a cancellable task handle.
package thumbs

import (
	"errors"
	"fmt"
	"image"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/justyntemme/panes/internal/debug"
)

// State is the lifecycle of a scan.
type State int32

const (
	Idle State = iota
	Running
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Item is one decoded image found by a scan.
type Item struct {
	Name     string
	Path     string
	Thumb    image.Image
	Original image.Point
}

// Result is the terminal report of a scan.
type Result struct {
	Path    string
	Found   int   // items delivered
	Skipped int   // allow-listed files that failed to decode
	State   State // Completed or Cancelled
	Err     error // set only when the directory itself could not be read
}

// Handler receives scan output. OnItem calls for one task never overlap and
// never happen after Cancel returns. OnDone is called exactly once.
// Neither callback may call Cancel or Wait on its own task.
type Handler struct {
	OnItem func(Item)
	OnDone func(Result)
}

var errStopped = errors.New("scan stopped")

// Scanner starts directory scans. One Scanner is shared by all panes.
type Scanner struct {
	cache *Cache
	edge  int
}

// NewScanner creates a scanner producing thumbnails of at most edge pixels.
// cache may be nil.
func NewScanner(edge int, cache *Cache) *Scanner {
	return &Scanner{cache: cache, edge: edge}
}

// Task is the handle of one running scan.
type Task struct {
	path    string
	handler Handler

	stop    atomic.Bool
	state   atomic.Int32
	deliver sync.Mutex // held for each OnItem call and counter update

	done   chan struct{}
	result Result
}

// Start begins scanning path on a background goroutine and returns at once.
func (s *Scanner) Start(path string, h Handler) *Task {
	t := &Task{
		path:    path,
		handler: h,
		done:    make(chan struct{}),
	}
	t.state.Store(int32(Running))
	debug.Log(debug.SCAN, "Start: %s", path)
	go s.run(t)
	return t
}

// Path returns the directory being scanned.
func (t *Task) Path() string { return t.path }

// State returns the current lifecycle state.
func (t *Task) State() State { return State(t.state.Load()) }

// Cancel asks the scan to stop. The decode in progress may finish, but once
// Cancel returns no further items are delivered. OnDone still fires.
func (t *Task) Cancel() {
	if !t.stop.Swap(true) {
		debug.Log(debug.SCAN, "Cancel: %s", t.path)
	}
	// Wait out a delivery that raced with the flag
	t.deliver.Lock()
	t.deliver.Unlock()
}

// Done is closed after OnDone has returned.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the scan has terminated and returns its result.
func (t *Task) Wait() Result {
	<-t.done
	return t.result
}

// Result returns the terminal result, or false while the scan is running.
func (t *Task) Result() (Result, bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return Result{}, false
	}
}

func (s *Scanner) run(t *Task) {
	res := Result{Path: t.path}

	err := s.walk(t, &res)
	if err != nil && !errors.Is(err, errStopped) {
		res.Err = err
	}

	if t.stop.Load() {
		res.State = Cancelled
	} else {
		res.State = Completed
	}
	t.result = res
	t.state.Store(int32(res.State))

	debug.Log(debug.SCAN, "Done: %s state=%s found=%d skipped=%d err=%v",
		t.path, res.State, res.Found, res.Skipped, res.Err)

	if t.handler.OnDone != nil {
		t.handler.OnDone(res)
	}
	close(t.done)
}

func (s *Scanner) walk(t *Task, res *Result) error {
	info, err := os.Stat(t.path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", t.path)
	}

	root := filepath.Clean(t.path)
	conf := &fastwalk.Config{Follow: false}

	return fastwalk.Walk(conf, root, func(fullPath string, d iofs.DirEntry, err error) error {
		if t.stop.Load() {
			return errStopped
		}
		if err != nil {
			if fullPath == root {
				return err
			}
			return nil
		}
		if fullPath == root {
			return nil
		}
		if d.IsDir() {
			return fastwalk.SkipDir
		}
		if !IsImage(d.Name()) {
			return nil
		}

		thumb, ok := s.thumbnail(fullPath, d)
		if !ok {
			t.deliver.Lock()
			res.Skipped++
			t.deliver.Unlock()
			return nil
		}

		t.deliver.Lock()
		defer t.deliver.Unlock()
		if t.stop.Load() {
			return errStopped
		}
		res.Found++
		if t.handler.OnItem != nil {
			t.handler.OnItem(Item{
				Name:     d.Name(),
				Path:     fullPath,
				Thumb:    thumb.Image,
				Original: thumb.Original,
			})
		}
		return nil
	})
}

// thumbnail decodes one file, consulting the cache first. Failures are
// logged and reported as !ok.
func (s *Scanner) thumbnail(path string, d iofs.DirEntry) (Thumb, bool) {
	info, err := d.Info()
	if err != nil {
		debug.Log(debug.SCAN, "thumbnail: stat %s: %v", path, err)
		return Thumb{}, false
	}
	if !info.Mode().IsRegular() {
		return Thumb{}, false
	}

	if s.cache != nil {
		if thumb, ok := s.cache.Get(path, info); ok {
			return thumb, true
		}
	}

	img, original, err := Decode(path, s.edge)
	if err != nil {
		debug.Log(debug.SCAN, "thumbnail: decode %s: %v", path, err)
		return Thumb{}, false
	}

	thumb := Thumb{Image: img, Original: original}
	if s.cache != nil {
		s.cache.Put(path, info, thumb)
	}
	return thumb, true
}
