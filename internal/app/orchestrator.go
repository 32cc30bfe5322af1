package app

import (
	"errors"
	"os"
	"sync"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"github.com/sirupsen/logrus"

	"github.com/justyntemme/panes/internal/appctx"
	"github.com/justyntemme/panes/internal/config"
	"github.com/justyntemme/panes/internal/debug"
	"github.com/justyntemme/panes/internal/layout"
	"github.com/justyntemme/panes/internal/pane"
	"github.com/justyntemme/panes/internal/profile"
	"github.com/justyntemme/panes/internal/store"
	"github.com/justyntemme/panes/internal/ui"
)

// WindowTitle is the main window title.
const WindowTitle = "File Manager Vibe"

// Options configure a GUI run.
type Options struct {
	Path       string    // first pane's directory
	LayoutID   layout.ID // zero keeps the saved layout
	ConfigPath string    // empty uses config.ConfigPath()
	DBPath     string    // empty uses the per-user settings location
}

// Orchestrator owns the window and connects the renderer to the Shell.
type Orchestrator struct {
	window *app.Window
	config *config.Manager
	store  *store.DB
	shell  *Shell
	ui     *ui.Renderer
	opts   Options

	drops  *dropPrompt
	dropMu sync.Mutex // one drop prompt at a time

	mu        sync.Mutex
	errs      []ui.ErrorPrompt
	maximized bool
}

func NewOrchestrator(opts Options) *Orchestrator {
	mgr := config.NewManager()
	var err error
	if opts.ConfigPath != "" {
		err = mgr.LoadFrom(opts.ConfigPath)
	} else {
		err = mgr.Load()
	}
	if err != nil {
		logrus.WithError(err).Warn("Config: using defaults")
	}
	cfg := mgr.Get()

	o := &Orchestrator{
		window: new(app.Window),
		config: mgr,
		opts:   opts,
	}
	o.drops = newDropPrompt(o.window.Invalidate)

	// Settings and profiles live in one database. Without it the app
	// still runs, it just forgets everything on exit.
	var settings SettingsStore
	var persister profile.Persister
	path, pathErr := opts.DBPath, error(nil)
	if path == "" {
		path, pathErr = store.DefaultPath(cfg.Store.Vendor, cfg.Store.App)
	}
	if pathErr != nil {
		logrus.WithError(pathErr).Error("Store: no settings location")
	} else if db, err := store.Open(path); err != nil {
		logrus.WithError(err).WithField("path", path).Error("Store: failed to open")
	} else {
		o.store = db
		settings = db
		persister = db
	}

	ctx := appctx.New(&cfg, persister)
	ctx.Invalidate = o.window.Invalidate

	mode, err := pane.ParseViewMode(cfg.Panes.DefaultViewMode)
	if err != nil {
		logrus.WithError(err).Warn("Config: bad default view mode")
	}

	var watcher *DirectoryWatcher
	if cfg.Watch.Enabled {
		if watcher, err = NewDirectoryWatcher(cfg.Watch.DebounceMs); err != nil {
			logrus.WithError(err).Warn("Watcher: disabled")
			watcher = nil
		}
	}

	o.shell = NewShell(ctx, settings, ShellOptions{
		Reporter: o,
		Chooser:  o,
		ViewMode: mode,
		Watcher:  watcher,
	})

	o.ui = ui.NewRenderer(config.NewHotkeyMatcher(cfg.Hotkeys))
	if cfg.Thumbnails.Size > 0 {
		o.ui.ThumbEdge = cfg.Thumbnails.Size
	}
	return o
}

// Run restores the saved state, opens the window and blocks until it is
// closed. State is saved on the way out.
func (o *Orchestrator) Run() error {
	if err := o.shell.Start(StartOptions{Path: o.opts.Path, LayoutID: o.opts.LayoutID}); err != nil {
		return err
	}
	defer func() {
		if o.store != nil {
			o.store.Close()
		}
	}()

	g := o.shell.Geometry()
	o.maximized = g.Maximized
	options := []app.Option{
		app.Title(WindowTitle),
		app.Size(unit.Dp(g.Width), unit.Dp(g.Height)),
	}
	if g.Maximized {
		options = append(options, app.Maximized.Option())
	}
	o.window.Option(options...)

	var ops op.Ops
	for {
		switch e := o.window.Event().(type) {
		case app.DestroyEvent:
			o.drops.answer(pane.DropCancel)
			if err := o.shell.Shutdown(); err != nil {
				logrus.WithError(err).Error("Shutdown")
			}
			return e.Err
		case app.ConfigEvent:
			o.mu.Lock()
			o.maximized = e.Config.Mode == app.Maximized
			o.mu.Unlock()
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			o.recordGeometry(e)

			state := o.snapshot()
			evt := o.ui.Layout(gtx, &state)
			o.handleUIEvent(evt)
			e.Frame(gtx.Ops)
		}
	}
}

// recordGeometry keeps the window size in dp. gio does not report the
// window position, so saved geometry is always centered.
func (o *Orchestrator) recordGeometry(e app.FrameEvent) {
	o.mu.Lock()
	maximized := o.maximized
	o.mu.Unlock()

	g := o.shell.Geometry()
	g.Maximized = maximized
	g.Centered = true
	if !maximized {
		g.Width = int(e.Metric.PxToDp(e.Size.X))
		g.Height = int(e.Metric.PxToDp(e.Size.Y))
	}
	o.shell.SetGeometry(g)
}

// snapshot copies what the renderer needs out of the shell.
func (o *Orchestrator) snapshot() ui.State {
	cur := o.shell.Engine().Current()
	active := o.shell.ActivePane()
	profiles := o.shell.Context().Profiles

	st := ui.State{
		LayoutID:      cur.ID,
		Root:          cur.Root,
		Profiles:      profiles.List(),
		ProfileFields: profiles.Snapshot(),
		ViewMode:      o.shell.ViewMode(),
		Drop:          o.drops.current(),
	}
	if err := o.config.ParseError(); err != nil {
		st.ConfigError = err.Error()
	}
	for _, p := range cur.Panes {
		st.Panes = append(st.Panes, ui.PaneView{
			ID:      p.ID(),
			Index:   p.Index(),
			Title:   p.Title(),
			Path:    p.Path(),
			Mode:    p.ViewMode(),
			Profile: p.ActiveProfile(),
			Active:  p == active,
			Columns: p.Columns(),
			Rows:    p.Rows(),
			Thumbs:  p.Thumbnails(),
			Scan:    p.ScanState(),
		})
	}
	if active != nil {
		st.Properties = profiles.Resolve(active.ActiveProfile()).Properties
	}

	o.mu.Lock()
	if len(o.errs) > 0 {
		e := o.errs[0]
		st.Error = &e
	}
	o.mu.Unlock()
	return st
}

func (o *Orchestrator) paneAt(i int) *pane.Pane {
	panes := o.shell.Engine().Panes()
	if i < 0 || i >= len(panes) {
		return nil
	}
	return panes[i]
}

func (o *Orchestrator) handleUIEvent(evt ui.UIEvent) {
	if evt.Action == ui.ActionNone {
		return
	}
	debug.Log(debug.UI, "handleUIEvent: action %d pane %d", evt.Action, evt.Pane)

	switch evt.Action {
	case ui.ActionCyclePane:
		o.shell.CycleActive(evt.Pane)
	case ui.ActionSetViewMode:
		o.shell.SetViewMode(evt.ViewMode)
		if err := o.config.SetDefaultViewMode(evt.ViewMode.String()); err != nil {
			logrus.WithError(err).Warn("Config: default view mode not saved")
		}
	case ui.ActionChangeLayout:
		if err := o.shell.ChangeLayout(evt.LayoutID); err != nil {
			o.ShowError("Layout Error", err.Error())
		}
	case ui.ActionDropChoice:
		o.drops.answer(evt.DropOp)
	case ui.ActionEditProfile:
		err := o.shell.EditProfile(evt.Profile, evt.NewName, evt.Fields)
		if err != nil && !errors.Is(err, profile.ErrDuplicateName) {
			o.ShowError("Profile Error", err.Error())
		}
	case ui.ActionDeleteProfile:
		if err := o.shell.DeleteProfile(evt.Profile); err != nil {
			o.ShowError("Profile Error", err.Error())
		}
	case ui.ActionDismissError:
		o.mu.Lock()
		if len(o.errs) > 0 {
			o.errs = o.errs[1:]
		}
		o.mu.Unlock()
	default:
		p := o.paneAt(evt.Pane)
		if p == nil {
			return
		}
		o.handlePaneEvent(p, evt)
	}
	o.window.Invalidate()
}

func (o *Orchestrator) handlePaneEvent(p *pane.Pane, evt ui.UIEvent) {
	switch evt.Action {
	case ui.ActionFocusPane:
		p.Focus()
	case ui.ActionNavigate:
		p.Focus()
		o.shell.Navigate(p, evt.Path)
	case ui.ActionUp:
		o.shell.Up(p)
	case ui.ActionRefresh:
		p.Refresh()
	case ui.ActionSetProfile:
		o.shell.SetPaneProfile(p, evt.Profile)
	case ui.ActionCreateProfile:
		name, err := o.shell.CreateProfile(evt.Profile)
		if err != nil {
			return
		}
		o.shell.SetPaneProfile(p, name)
		if err := o.shell.Context().Profiles.Persist(); err != nil {
			logrus.WithError(err).Warn("Profiles: not saved")
		}
	case ui.ActionDrop:
		go func() {
			o.dropMu.Lock()
			defer o.dropMu.Unlock()
			o.shell.HandleDrop(p, evt.Sources)
			o.window.Invalidate()
		}()
	}
}

// ChooseDrop implements pane.DropChooser. It shows the drop prompt and
// waits for the answer from the window goroutine, so it must not be called
// from there.
func (o *Orchestrator) ChooseDrop(target *pane.Pane, sources []string) pane.DropOp {
	return o.drops.ask(target.Path(), sources)
}

// ShowError implements Reporter. Errors are queued and shown one at a time.
func (o *Orchestrator) ShowError(title, message string) {
	logrus.WithField("title", title).Warn(message)
	o.mu.Lock()
	o.errs = append(o.errs, ui.ErrorPrompt{Title: title, Message: message})
	o.mu.Unlock()
	o.window.Invalidate()
}

// Main runs the GUI. It does not return.
func Main(opts Options) {
	go func() {
		o := NewOrchestrator(opts)
		if err := o.Run(); err != nil {
			logrus.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}
