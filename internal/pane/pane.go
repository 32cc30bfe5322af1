// Package pane implements one file-browsing viewport: a path, a view mode, an
// active field profile and the thumbnail scan feeding its Images view.
package pane

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justyntemme/panes/internal/appctx"
	"github.com/justyntemme/panes/internal/debug"
	"github.com/justyntemme/panes/internal/fs"
	"github.com/justyntemme/panes/internal/profile"
	"github.com/justyntemme/panes/internal/thumbs"
)

// ErrInvalidPath is returned by NavigateTo for a path that is not an
// existing, readable directory.
var ErrInvalidPath = errors.New("not an existing directory")

// FocusListener is told when a pane gains input focus.
type FocusListener interface {
	PaneFocused(p *Pane)
}

// FileOperationRequester performs the file operations a drop asks for.
type FileOperationRequester interface {
	Copy(src, destDir string) error
	Move(src, destDir string) error
}

// Options configure a new pane.
type Options struct {
	Index    int // position in the layout's creation order
	Focus    FocusListener
	FileOps  FileOperationRequester
	ViewMode ViewMode
	Profile  string // defaults to profile.DefaultName
}

// Pane is safe for concurrent use. View state is guarded by viewMu; the scan
// handle by scanMu. viewMu is never held while a scan is cancelled or awaited.
type Pane struct {
	id      string
	index   int
	ctx     *appctx.Context
	focus   FocusListener
	fileOps FileOperationRequester

	viewMu      sync.RWMutex
	path        string
	mode        ViewMode
	profileName string
	columns     []Column
	entries     []fs.Entry
	thumbnails  []thumbs.Item
	scanState   thumbs.State
	gen         uint64
	highlighted bool
	closed      bool

	scanMu    sync.Mutex
	task      *thumbs.Task
	scanStale bool // directory changed since the last scan started
}

// New creates a pane. It has no path until NavigateTo succeeds.
func New(ctx *appctx.Context, opts Options) *Pane {
	name := storedProfile(ctx, opts.Profile)
	p := &Pane{
		id:          uuid.NewString(),
		index:       opts.Index,
		ctx:         ctx,
		focus:       opts.Focus,
		fileOps:     opts.FileOps,
		mode:        opts.ViewMode,
		profileName: name,
	}
	p.columns = ResolveColumns(p.mode, ctx.Profiles.Resolve(name))
	debug.Log(debug.PANE, "New: pane %d id=%s mode=%s profile=%q", p.index, p.id, p.mode, name)
	return p
}

// ID returns the pane's unique identity.
func (p *Pane) ID() string { return p.id }

// Index returns the pane's position in its layout.
func (p *Pane) Index() int { return p.index }

// Path returns the current directory.
func (p *Pane) Path() string {
	p.viewMu.RLock()
	defer p.viewMu.RUnlock()
	return p.path
}

// Title is the folder name shown in the pane header.
func (p *Pane) Title() string {
	path := p.Path()
	if base := filepath.Base(path); base != "" && base != "." && base != string(filepath.Separator) {
		return base
	}
	return path
}

// ViewMode returns the current view mode.
func (p *Pane) ViewMode() ViewMode {
	p.viewMu.RLock()
	defer p.viewMu.RUnlock()
	return p.mode
}

// ActiveProfile returns the name of the active profile.
func (p *Pane) ActiveProfile() string {
	p.viewMu.RLock()
	defer p.viewMu.RUnlock()
	return p.profileName
}

// NavigateTo shows path. An invalid path leaves the pane unchanged.
func (p *Pane) NavigateTo(path string) error {
	if path == "" || !fs.IsDir(path) {
		logrus.WithField("pane", p.index).Warnf("navigate: %q is not a directory", path)
		return fmt.Errorf("navigate to %q: %w", path, ErrInvalidPath)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	entries, err := p.ctx.FS.ListDir(path)
	if err != nil {
		logrus.WithField("pane", p.index).Warnf("navigate: cannot list %q: %v", path, err)
		return fmt.Errorf("navigate to %q: %w: %v", path, ErrInvalidPath, err)
	}

	p.viewMu.Lock()
	if p.closed {
		p.viewMu.Unlock()
		return nil
	}
	p.path = path
	p.entries = entries
	p.viewMu.Unlock()

	debug.Log(debug.PANE, "NavigateTo: pane %d -> %s (%d entries)", p.index, path, len(entries))
	p.restartScan()
	p.ctx.Redraw()
	return nil
}

// Up navigates to the parent directory.
func (p *Pane) Up() error {
	path := p.Path()
	parent := filepath.Dir(path)
	if path == "" || parent == path {
		return nil
	}
	return p.NavigateTo(parent)
}

// Refresh re-reads the current directory. The Images view is rescanned at
// once; other modes rescan when Images is next shown.
func (p *Pane) Refresh() {
	path := p.Path()
	if path == "" {
		return
	}
	entries, err := p.ctx.FS.ListDir(path)
	if err != nil {
		logrus.WithField("pane", p.index).Warnf("refresh: cannot list %q: %v", path, err)
		return
	}

	p.viewMu.Lock()
	if p.closed || p.path != path {
		p.viewMu.Unlock()
		return
	}
	p.entries = entries
	mode := p.mode
	p.viewMu.Unlock()

	if mode == Images {
		p.restartScan()
	} else {
		p.scanMu.Lock()
		p.scanStale = true
		p.scanMu.Unlock()
	}
	p.ctx.Redraw()
}

// ApplyViewMode switches presentation. Detailed re-resolves the columns from
// the active profile. Images starts a scan only when the current path has no
// running or completed one.
func (p *Pane) ApplyViewMode(mode ViewMode) {
	p.viewMu.Lock()
	p.mode = mode
	p.columns = ResolveColumns(mode, p.ctx.Profiles.Resolve(p.profileName))
	path := p.path
	p.viewMu.Unlock()

	debug.Log(debug.PANE, "ApplyViewMode: pane %d -> %s", p.index, mode)
	if mode == Images && path != "" && !p.hasScanFor(path) {
		p.restartScan()
	}
	p.ctx.Redraw()
}

// storedProfile returns name when the store still has it, and the Default
// profile otherwise.
func storedProfile(ctx *appctx.Context, name string) string {
	if name == "" || name == profile.CreateNewName || !ctx.Profiles.Exists(name) {
		return profile.DefaultName
	}
	return name
}

// SetActiveProfile selects the profile used by the Detailed view. The create
// sentinel and empty names are ignored; names missing from the store select
// Default.
func (p *Pane) SetActiveProfile(name string) {
	if name == "" || name == profile.CreateNewName {
		return
	}
	name = storedProfile(p.ctx, name)

	p.viewMu.Lock()
	p.profileName = name
	if p.mode == Detailed {
		p.columns = ResolveColumns(p.mode, p.ctx.Profiles.Resolve(name))
	}
	p.viewMu.Unlock()

	debug.Log(debug.PANE, "SetActiveProfile: pane %d -> %q", p.index, name)
	p.ctx.Redraw()
}

// ReloadProfile re-resolves the columns after the profile store changed.
func (p *Pane) ReloadProfile() {
	p.viewMu.Lock()
	p.columns = ResolveColumns(p.mode, p.ctx.Profiles.Resolve(p.profileName))
	p.viewMu.Unlock()
}

// Columns returns the visible list columns.
func (p *Pane) Columns() []Column {
	p.viewMu.RLock()
	defer p.viewMu.RUnlock()
	return append([]Column(nil), p.columns...)
}

// Rows returns the directory entries with text for the visible columns.
func (p *Pane) Rows() []Row {
	p.viewMu.RLock()
	defer p.viewMu.RUnlock()
	return buildRows(p.entries, p.columns)
}

// Entries returns the current directory listing.
func (p *Pane) Entries() []fs.Entry {
	p.viewMu.RLock()
	defer p.viewMu.RUnlock()
	return append([]fs.Entry(nil), p.entries...)
}

// Thumbnails returns the items delivered by the current scan, in delivery
// order.
func (p *Pane) Thumbnails() []thumbs.Item {
	p.viewMu.RLock()
	defer p.viewMu.RUnlock()
	return append([]thumbs.Item(nil), p.thumbnails...)
}

// ScanState returns the state of the current scan.
func (p *Pane) ScanState() thumbs.State {
	p.viewMu.RLock()
	defer p.viewMu.RUnlock()
	return p.scanState
}

// Focus reports that the pane gained input focus.
func (p *Pane) Focus() {
	if p.focus != nil {
		p.focus.PaneFocused(p)
	}
}

// SetHighlighted marks the pane as the active one.
func (p *Pane) SetHighlighted(on bool) {
	p.viewMu.Lock()
	p.highlighted = on
	p.viewMu.Unlock()
}

// Highlighted reports whether the pane is marked active.
func (p *Pane) Highlighted() bool {
	p.viewMu.RLock()
	defer p.viewMu.RUnlock()
	return p.highlighted
}

// WaitScan blocks until the current scan, if any, has terminated.
func (p *Pane) WaitScan() thumbs.Result {
	p.scanMu.Lock()
	task := p.task
	p.scanMu.Unlock()
	if task == nil {
		return thumbs.Result{State: thumbs.Idle}
	}
	return task.Wait()
}

// Close cancels and awaits the scan. A closed pane starts no more scans.
func (p *Pane) Close() {
	p.viewMu.Lock()
	p.closed = true
	p.viewMu.Unlock()

	p.scanMu.Lock()
	defer p.scanMu.Unlock()
	if p.task != nil {
		p.task.Cancel()
		p.task.Wait()
	}
	debug.Log(debug.PANE, "Close: pane %d", p.index)
}

func (p *Pane) hasScanFor(path string) bool {
	p.scanMu.Lock()
	defer p.scanMu.Unlock()
	return p.task != nil && !p.scanStale && p.task.Path() == path && p.task.State() != thumbs.Cancelled
}

// restartScan cancels the previous scan, waits for its terminal callback,
// clears the thumbnails and starts a scan of the current path.
func (p *Pane) restartScan() {
	p.scanMu.Lock()
	defer p.scanMu.Unlock()

	if p.task != nil {
		p.task.Cancel()
		p.task.Wait()
	}

	p.viewMu.Lock()
	if p.closed || p.path == "" {
		p.viewMu.Unlock()
		return
	}
	p.gen++
	gen := p.gen
	path := p.path
	p.thumbnails = nil
	p.scanState = thumbs.Running
	p.viewMu.Unlock()

	p.scanStale = false
	p.task = p.ctx.Scanner.Start(path, thumbs.Handler{
		OnItem: func(it thumbs.Item) { p.addThumb(gen, it) },
		OnDone: func(r thumbs.Result) { p.scanDone(gen, r) },
	})
}

func (p *Pane) addThumb(gen uint64, it thumbs.Item) {
	p.viewMu.Lock()
	if gen != p.gen {
		p.viewMu.Unlock()
		return
	}
	p.thumbnails = append(p.thumbnails, it)
	p.viewMu.Unlock()
	p.ctx.Redraw()
}

func (p *Pane) scanDone(gen uint64, r thumbs.Result) {
	p.viewMu.Lock()
	if gen == p.gen {
		p.scanState = r.State
	}
	p.viewMu.Unlock()
	if r.Err != nil {
		logrus.WithField("pane", p.index).Warnf("scan %s: %v", r.Path, r.Err)
	}
	p.ctx.Redraw()
}
