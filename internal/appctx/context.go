// Package appctx holds the dependencies shared by the layout engine, panes and
// the shell. One Context is built at startup and passed by pointer.
package appctx

import (
	"github.com/justyntemme/panes/internal/config"
	"github.com/justyntemme/panes/internal/fs"
	"github.com/justyntemme/panes/internal/profile"
	"github.com/justyntemme/panes/internal/thumbs"
)

// Context is the explicit application context.
type Context struct {
	Config   *config.Config
	FS       *fs.System
	Scanner  *thumbs.Scanner
	Profiles *profile.Store

	// DefaultRoot is where panes go when no usable path is known.
	DefaultRoot string

	// Invalidate asks the UI to redraw. Background work calls it after
	// changing what a pane shows. May be nil.
	Invalidate func()
}

// New builds a Context from cfg. The profile store's persister is supplied
// by the caller so this package stays free of storage concerns.
func New(cfg *config.Config, profiles profile.Persister) *Context {
	fsys := fs.NewSystem()
	fsys.ShowDotfiles = cfg.Panes.ShowDotfiles

	cache := thumbs.NewCache(cfg.Thumbnails.CacheEntries)

	return &Context{
		Config:      cfg,
		FS:          fsys,
		Scanner:     thumbs.NewScanner(cfg.Thumbnails.Size, cache),
		Profiles:    profile.NewStore(profiles),
		DefaultRoot: cfg.DefaultRoot(),
	}
}

// Redraw calls Invalidate when set.
func (c *Context) Redraw() {
	if c != nil && c.Invalidate != nil {
		c.Invalidate()
	}
}
