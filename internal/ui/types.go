package ui

import (
	"gioui.org/layout"
	"gioui.org/widget"

	splits "github.com/justyntemme/panes/internal/layout"
	"github.com/justyntemme/panes/internal/pane"
	"github.com/justyntemme/panes/internal/profile"
	"github.com/justyntemme/panes/internal/thumbs"
)

type UIAction int

// FileDragMIME is the MIME type for drags between panes. The payload is a
// newline-separated list of paths.
const FileDragMIME = "application/x-panes-file-paths"

const (
	ActionNone UIAction = iota
	ActionFocusPane
	ActionNavigate // Path
	ActionUp
	ActionRefresh
	ActionCyclePane // Pane holds the step (+1/-1)
	ActionSetViewMode
	ActionChangeLayout
	ActionSetProfile
	ActionCreateProfile // Profile holds the new name
	ActionEditProfile   // Profile renamed to NewName with Fields
	ActionDeleteProfile
	ActionDrop          // Sources dropped on Pane
	ActionDropChoice    // answer to the drop prompt
	ActionDismissError
)

// UIEvent is what the renderer asks the app to do after a frame.
// Pane is the index of the pane the action applies to.
type UIEvent struct {
	Action   UIAction
	Pane     int
	Path     string
	Sources  []string
	ViewMode pane.ViewMode
	LayoutID splits.ID
	Profile  string
	NewName  string
	Fields   profile.Fields
	DropOp   pane.DropOp
}

// PaneView is a snapshot of one pane for a single frame.
type PaneView struct {
	ID      string
	Index   int
	Title   string
	Path    string
	Mode    pane.ViewMode
	Profile string
	Active  bool
	Columns []pane.Column
	Rows    []pane.Row
	Thumbs  []thumbs.Item
	Scan    thumbs.State
}

// DropPrompt asks how to apply a drop.
type DropPrompt struct {
	Target  string
	Sources []string
}

// ErrorPrompt is a modal error message.
type ErrorPrompt struct {
	Title   string
	Message string
}

// State is everything the renderer draws. It is rebuilt by the app before
// every frame.
type State struct {
	LayoutID splits.ID
	Root     *splits.Node
	Panes    []PaneView
	Profiles []string // selectable names, Default first, Create New last
	// ProfileFields holds the stored profiles, for the profile editor.
	ProfileFields map[string]profile.Fields
	ViewMode pane.ViewMode

	// Properties are the property fields of the active pane's profile,
	// listed by the properties panel.
	Properties []string

	Drop        *DropPrompt
	Error       *ErrorPrompt
	ConfigError string // shown in a banner when config.json could not be parsed
}

// paneWidgets is the widget state kept across frames for one pane.
type paneWidgets struct {
	list       widget.List
	grid       widget.List
	upBtn      widget.Clickable
	refreshBtn widget.Clickable
	profileBtn widget.Clickable
	editBtn    widget.Clickable
	focusTag   struct{}
	dropTag    struct{}
	rows       map[string]*rowWidgets
}

type rowWidgets struct {
	drag ClickAndDraggable
}

func newPaneWidgets() *paneWidgets {
	w := &paneWidgets{rows: make(map[string]*rowWidgets)}
	w.list.Axis = layout.Vertical
	w.grid.Axis = layout.Vertical
	return w
}

func (w *paneWidgets) row(path string) *rowWidgets {
	rw, ok := w.rows[path]
	if !ok {
		rw = &rowWidgets{}
		rw.drag.Type = FileDragMIME
		w.rows[path] = rw
	}
	return rw
}
