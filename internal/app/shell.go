// Package app coordinates panes: the active pane, view-mode and profile
// changes, layout switches, drops and persistence, plus the gio window loop.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/justyntemme/panes/internal/appctx"
	"github.com/justyntemme/panes/internal/debug"
	"github.com/justyntemme/panes/internal/layout"
	"github.com/justyntemme/panes/internal/pane"
	"github.com/justyntemme/panes/internal/profile"
)

// Reporter shows an error to the user. It must not block on user input.
type Reporter interface {
	ShowError(title, message string)
}

type logReporter struct{}

func (logReporter) ShowError(title, message string) {
	logrus.WithField("title", title).Error(message)
}

// ShellOptions configure a Shell. Zero values take defaults.
type ShellOptions struct {
	Reporter Reporter
	Chooser  pane.DropChooser
	FileOps  pane.FileOperationRequester // defaults to the context's file system
	ViewMode pane.ViewMode
	Watcher  *DirectoryWatcher
}

// StartOptions override the saved state at startup.
type StartOptions struct {
	Path     string    // first pane's directory
	LayoutID layout.ID // zero keeps the saved layout
}

// Shell is the top-level coordinator. It is safe for concurrent use: drops
// run off the window goroutine and layout rebuilds are serialized by the
// engine.
type Shell struct {
	ctx      *appctx.Context
	engine   *layout.Engine
	settings SettingsStore
	reporter Reporter
	chooser  pane.DropChooser

	mu       sync.Mutex
	watcher  *DirectoryWatcher // nil after Shutdown
	active   *pane.Pane
	viewMode pane.ViewMode
	geometry Geometry
	stop     chan struct{}
	stopOnce sync.Once
}

func NewShell(ctx *appctx.Context, settings SettingsStore, opts ShellOptions) *Shell {
	s := &Shell{
		ctx:      ctx,
		settings: settings,
		reporter: opts.Reporter,
		chooser:  opts.Chooser,
		watcher:  opts.Watcher,
		viewMode: opts.ViewMode,
		geometry: DefaultGeometry(),
		stop:     make(chan struct{}),
	}
	if s.reporter == nil {
		s.reporter = logReporter{}
	}

	fileOps := opts.FileOps
	if fileOps == nil && ctx.FS != nil {
		fileOps = ctx.FS
	}
	s.engine = layout.NewEngine(ctx, layout.EngineOptions{
		Focus:       s,
		FileOps:     fileOps,
		DefaultMode: opts.ViewMode,
	})
	return s
}

// Engine returns the layout engine.
func (s *Shell) Engine() *layout.Engine { return s.engine }

// Context returns the application context.
func (s *Shell) Context() *appctx.Context { return s.ctx }

// Start restores profiles and the saved state and builds the layout.
func (s *Shell) Start(opts StartOptions) error {
	if err := s.ctx.Profiles.ReadPersisted(); err != nil {
		logrus.Warnf("profiles: %v", err)
	}

	st := LoadState(s.settings)
	if opts.LayoutID != 0 {
		if opts.LayoutID.Valid() {
			st.LayoutID = opts.LayoutID
		} else {
			logrus.Warnf("ignoring unknown layout %d", int(opts.LayoutID))
		}
	}

	seeds := st.Seeds()
	if opts.Path != "" {
		if len(seeds) == 0 {
			seeds = make([]layout.Seed, 1)
		}
		seeds[0].Path = opts.Path
	}

	s.mu.Lock()
	s.geometry = st.Geometry
	s.mu.Unlock()

	debug.Log(debug.APP, "Start: layout %d, %d saved panes", int(st.LayoutID), len(seeds))
	if err := s.apply(st.LayoutID, seeds); err != nil {
		return err
	}

	s.mu.Lock()
	w := s.watcher
	s.mu.Unlock()
	if w != nil {
		go s.watchLoop(w)
	}
	return nil
}

// Shutdown saves the state and profiles and closes every pane.
func (s *Shell) Shutdown() error {
	var errs []error
	if s.settings != nil {
		if err := SaveState(s.settings, s.State()); err != nil {
			errs = append(errs, fmt.Errorf("save state: %w", err))
		}
	}
	if err := s.ctx.Profiles.Persist(); err != nil {
		errs = append(errs, err)
	}

	s.stopOnce.Do(func() { close(s.stop) })
	s.engine.Close()
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w != nil {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	debug.Log(debug.APP, "Shutdown: %d errors", len(errs))
	return errors.Join(errs...)
}

// State captures the current arrangement for saving.
func (s *Shell) State() ApplicationState {
	cur := s.engine.Current()
	st := ApplicationState{LayoutID: cur.ID, Geometry: s.Geometry()}
	for _, p := range cur.Panes {
		st.PanePaths = append(st.PanePaths, p.Path())
		st.PaneProfiles = append(st.PaneProfiles, p.ActiveProfile())
		st.PaneViewModes = append(st.PaneViewModes, p.ViewMode().String())
	}
	return st
}

// Geometry returns the window geometry to save.
func (s *Shell) Geometry() Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geometry
}

// SetGeometry records the window geometry.
func (s *Shell) SetGeometry(g Geometry) {
	if !g.valid() {
		return
	}
	s.mu.Lock()
	s.geometry = g
	s.mu.Unlock()
}

// PaneFocused implements pane.FocusListener.
func (s *Shell) PaneFocused(p *pane.Pane) {
	s.SetActivePane(p)
}

// SetActivePane makes p the active, highlighted pane. Panes not in the
// current layout are ignored.
func (s *Shell) SetActivePane(p *pane.Pane) {
	if !s.engine.Owns(p) {
		debug.Log(debug.APP, "SetActivePane: ignoring pane outside the layout")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == p {
		return
	}
	if s.active != nil {
		s.active.SetHighlighted(false)
	}
	s.active = p
	p.SetHighlighted(true)
	debug.Log(debug.APP, "SetActivePane: pane %d", p.Index())
}

// ActivePane returns the active pane, or nil during a layout rebuild.
func (s *Shell) ActivePane() *pane.Pane {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// CycleActive moves the active pane by delta in creation order.
func (s *Shell) CycleActive(delta int) {
	panes := s.engine.Panes()
	if len(panes) == 0 {
		return
	}
	idx := 0
	if active := s.ActivePane(); active != nil {
		idx = active.Index()
	}
	idx = ((idx+delta)%len(panes) + len(panes)) % len(panes)
	s.SetActivePane(panes[idx])
}

// ViewMode returns the last selected global view mode.
func (s *Shell) ViewMode() pane.ViewMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewMode
}

// SetViewMode applies mode to the active pane only.
func (s *Shell) SetViewMode(mode pane.ViewMode) {
	s.mu.Lock()
	s.viewMode = mode
	active := s.active
	s.mu.Unlock()

	if active != nil {
		active.ApplyViewMode(mode)
	}
}

// LayoutID returns the displayed layout.
func (s *Shell) LayoutID() layout.ID {
	return s.engine.Current().ID
}

// ChangeLayout rebuilds with layout id. Pane i keeps the path, profile and
// view mode of the previous pane i; the first pane becomes active.
func (s *Shell) ChangeLayout(id layout.ID) error {
	if _, err := layout.Spec(id); err != nil {
		return err
	}

	var seeds []layout.Seed
	for _, p := range s.engine.Panes() {
		seeds = append(seeds, layout.Seed{
			Path:     p.Path(),
			Profile:  p.ActiveProfile(),
			ViewMode: p.ViewMode(),
			HasMode:  true,
		})
	}
	return s.apply(id, seeds)
}

func (s *Shell) apply(id layout.ID, seeds []layout.Seed) error {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()

	panes, err := s.engine.ApplySeeds(id, seeds)
	if err != nil {
		return err
	}
	if len(panes) > 0 {
		s.SetActivePane(panes[0])
	}
	s.syncWatches()
	s.ctx.Redraw()
	return nil
}

// Navigate moves p to path. Invalid paths are logged by the pane and leave
// it unchanged.
func (s *Shell) Navigate(p *pane.Pane, path string) error {
	if err := p.NavigateTo(path); err != nil {
		return err
	}
	s.syncWatches()
	return nil
}

// Up moves p to its parent directory.
func (s *Shell) Up(p *pane.Pane) error {
	if err := p.Up(); err != nil {
		return err
	}
	s.syncWatches()
	return nil
}

// RefreshPath re-reads every pane showing dir.
func (s *Shell) RefreshPath(dir string) {
	dir = filepath.Clean(dir)
	for _, p := range s.engine.Panes() {
		if p.Path() == dir {
			p.Refresh()
		}
	}
}

// SetPaneProfile selects a profile for one pane.
func (s *Shell) SetPaneProfile(p *pane.Pane, name string) {
	if name == profile.CreateNewName {
		return
	}
	p.SetActiveProfile(name)
}

// CreateProfile adds a profile. A taken name is reported to the user and
// nothing changes.
func (s *Shell) CreateProfile(name string) (string, error) {
	created, err := s.ctx.Profiles.Create(name)
	if err != nil {
		if errors.Is(err, profile.ErrDuplicateName) {
			s.reporter.ShowError("Profile Exists", fmt.Sprintf("A profile named '%s' already exists.", name))
		}
		return "", err
	}
	return created, nil
}

// ApplyProfileEdits replaces all profiles, as when the profile editor is
// accepted, and persists them.
func (s *Shell) ApplyProfileEdits(edits map[string]profile.Fields) error {
	s.ctx.Profiles.Load(edits)
	s.repointPanes()
	return s.ctx.Profiles.Persist()
}

// RenameProfile renames a profile and moves panes using it along.
func (s *Shell) RenameProfile(oldName, newName string) error {
	if err := s.ctx.Profiles.Rename(oldName, newName); err != nil {
		return err
	}
	for _, p := range s.engine.Panes() {
		if p.ActiveProfile() == oldName {
			p.SetActiveProfile(newName)
		}
	}
	return s.ctx.Profiles.Persist()
}

// DeleteProfile removes a profile; panes using it fall back to Default.
func (s *Shell) DeleteProfile(name string) error {
	if err := s.ctx.Profiles.Delete(name); err != nil {
		return err
	}
	s.repointPanes()
	return s.ctx.Profiles.Persist()
}

// EditProfile accepts the profile editor for name: it renames the profile
// when newName differs, stores the edited fields and persists every profile.
// A taken name is reported to the user and nothing changes.
func (s *Shell) EditProfile(name, newName string, fields profile.Fields) error {
	if profile.IsReserved(name) {
		return fmt.Errorf("edit %q: %w", name, profile.ErrReservedName)
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return profile.ErrEmptyName
	}
	if newName != name {
		if err := s.RenameProfile(name, newName); err != nil {
			if errors.Is(err, profile.ErrDuplicateName) {
				s.reporter.ShowError("Profile Exists", fmt.Sprintf("A profile named '%s' already exists.", newName))
			}
			return err
		}
	}
	edits := s.ctx.Profiles.Snapshot()
	edits[newName] = fields
	return s.ApplyProfileEdits(edits)
}

func (s *Shell) repointPanes() {
	for _, p := range s.engine.Panes() {
		if s.ctx.Profiles.Exists(p.ActiveProfile()) {
			p.ReloadProfile()
		} else {
			p.SetActiveProfile(profile.DefaultName)
		}
	}
}

// HandleDrop runs a drop on p and reports every failed item.
func (s *Shell) HandleDrop(p *pane.Pane, sources []string) pane.DropOutcome {
	out := p.Drop(sources, s.chooser)

	op := out.Op.String()
	for _, f := range out.Failures {
		s.reporter.ShowError(
			strings.ToUpper(op[:1])+op[1:]+" Error",
			fmt.Sprintf("Could not %s item:\n%v", op, f.Err),
		)
	}

	if out.Op == pane.DropMove {
		refreshed := map[string]bool{out.Dest: true}
		for _, src := range out.Attempted {
			dir := filepath.Dir(src)
			if !refreshed[dir] {
				refreshed[dir] = true
				s.RefreshPath(dir)
			}
		}
	}
	s.syncWatches()
	return out
}

func (s *Shell) syncWatches() {
	s.mu.Lock()
	w := s.watcher
	s.mu.Unlock()
	if w == nil {
		return
	}
	var paths []string
	for _, p := range s.engine.Panes() {
		paths = append(paths, p.Path())
	}
	w.Sync(paths)
}

func (s *Shell) watchLoop(w *DirectoryWatcher) {
	for {
		select {
		case <-s.stop:
			return
		case dir := <-w.Notify():
			debug.Log(debug.APP, "watch: refreshing %s", dir)
			s.RefreshPath(dir)
		}
	}
}
