package layout

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/justyntemme/panes/internal/appctx"
	"github.com/justyntemme/panes/internal/debug"
	"github.com/justyntemme/panes/internal/fs"
	"github.com/justyntemme/panes/internal/pane"
)

// Arrangement is the layout currently on screen.
type Arrangement struct {
	ID     ID
	Root   *Node
	Panes  []*pane.Pane // creation (pre-order) order
	Panels []Panel
}

// Seed carries what a pane should start with. Zero fields take defaults.
type Seed struct {
	Path     string
	Profile  string
	ViewMode pane.ViewMode
	HasMode  bool
}

// EngineOptions are handed to every pane the engine creates.
type EngineOptions struct {
	Focus       pane.FocusListener
	FileOps     pane.FileOperationRequester
	DefaultMode pane.ViewMode
}

// Engine builds arrangements and owns their panes.
type Engine struct {
	ctx  *appctx.Context
	opts EngineOptions

	applyMu sync.Mutex // serializes Apply

	mu      sync.RWMutex
	current Arrangement
}

func NewEngine(ctx *appctx.Context, opts EngineOptions) *Engine {
	return &Engine{ctx: ctx, opts: opts}
}

// Current returns the displayed arrangement.
func (e *Engine) Current() Arrangement {
	e.mu.RLock()
	defer e.mu.RUnlock()
	a := e.current
	a.Panes = append([]*pane.Pane(nil), e.current.Panes...)
	a.Panels = append([]Panel(nil), e.current.Panels...)
	return a
}

// Panes returns the displayed panes in creation order.
func (e *Engine) Panes() []*pane.Pane {
	return e.Current().Panes
}

// Owns reports whether p belongs to the displayed arrangement.
func (e *Engine) Owns(p *pane.Pane) bool {
	if p == nil {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, q := range e.current.Panes {
		if q == p {
			return true
		}
	}
	return false
}

// Apply replaces the arrangement with layout id. Pane i starts at
// priorPaths[i] when that is an existing directory, else at the default root.
func (e *Engine) Apply(id ID, priorPaths []string) ([]*pane.Pane, error) {
	seeds := make([]Seed, len(priorPaths))
	for i, p := range priorPaths {
		seeds[i] = Seed{Path: p}
	}
	return e.ApplySeeds(id, seeds)
}

// ApplySeeds is Apply with per-pane profile and view mode.
//
// An unknown id changes nothing. Otherwise the old panes are closed, which
// cancels and awaits their scans, the new panes are built and navigated, and
// only then is the new arrangement swapped in.
func (e *Engine) ApplySeeds(id ID, seeds []Seed) ([]*pane.Pane, error) {
	root, err := Spec(id)
	if err != nil {
		return nil, err
	}

	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	debug.Log(debug.LAYOUT, "Apply: layout %d %s", int(id), root)

	for _, old := range e.Current().Panes {
		old.Close()
	}

	next := Arrangement{ID: id, Root: root}
	root.Walk(func(n *Node) {
		switch n.Kind {
		case PaneSlot:
			i := len(next.Panes)
			var seed Seed
			if i < len(seeds) {
				seed = seeds[i]
			}
			mode := e.opts.DefaultMode
			if seed.HasMode {
				mode = seed.ViewMode
			}
			next.Panes = append(next.Panes, pane.New(e.ctx, pane.Options{
				Index:    i,
				Focus:    e.opts.Focus,
				FileOps:  e.opts.FileOps,
				ViewMode: mode,
				Profile:  seed.Profile,
			}))
		case StaticPanelSlot:
			next.Panels = append(next.Panels, n.Panel)
		}
	})

	for i, p := range next.Panes {
		path := ""
		if i < len(seeds) {
			path = seeds[i].Path
		}
		e.navigate(p, path)
	}

	e.mu.Lock()
	e.current = next
	e.mu.Unlock()

	debug.Log(debug.LAYOUT, "Apply: layout %d has %d panes, %d panels", int(id), len(next.Panes), len(next.Panels))
	return append([]*pane.Pane(nil), next.Panes...), nil
}

func (e *Engine) navigate(p *pane.Pane, path string) {
	if path != "" && fs.IsDir(path) {
		if err := p.NavigateTo(path); err == nil {
			return
		}
	} else if path != "" {
		logrus.WithField("pane", p.Index()).Infof("saved path %q is gone, using %s", path, e.ctx.DefaultRoot)
	}
	if err := p.NavigateTo(e.ctx.DefaultRoot); err != nil {
		logrus.WithField("pane", p.Index()).Warnf("default root: %v", err)
	}
}

// Close tears down every pane. The engine shows nothing afterwards.
func (e *Engine) Close() {
	e.applyMu.Lock()
	defer e.applyMu.Unlock()

	for _, p := range e.Current().Panes {
		p.Close()
	}
	e.mu.Lock()
	e.current = Arrangement{}
	e.mu.Unlock()
}
