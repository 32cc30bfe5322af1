// Package ui draws the pane layout with gio and turns input into UIEvents.
package ui

import (
	"fmt"
	"image"
	"slices"
	"strings"

	"gioui.org/font"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/justyntemme/panes/internal/config"
	"github.com/justyntemme/panes/internal/debug"
	splits "github.com/justyntemme/panes/internal/layout"
	"github.com/justyntemme/panes/internal/pane"
	"github.com/justyntemme/panes/internal/profile"
)

var viewModes = []pane.ViewMode{pane.Narrow, pane.Detailed, pane.Images}

// Renderer owns all widget state. Layout is called once per frame from the
// window goroutine.
type Renderer struct {
	Theme     *material.Theme
	Hotkeys   *config.HotkeyMatcher
	ThumbEdge int // thumbnail cell edge in dp

	modeBtns   map[pane.ViewMode]*widget.Clickable
	layoutBtns map[splits.ID]*widget.Clickable
	panes      map[string]*paneWidgets
	images     *imageOps

	profileMenu  string // id of the pane whose profile menu is open
	profileItems map[string]*widget.Clickable

	createFor    int // pane index the create-profile dialog is for, -1 when closed
	createEditor widget.Editor
	createOK     widget.Clickable
	createCancel widget.Clickable

	editFor     string // profile open in the editor, "" when closed
	editName    widget.Editor
	editDisplay widget.Editor
	editProps   widget.Editor
	editSave    widget.Clickable
	editDelete  widget.Clickable
	editCancel  widget.Clickable

	dropCopy   widget.Clickable
	dropMove   widget.Clickable
	dropCancel widget.Clickable
	errorOK    widget.Clickable

	backdropTag struct{}
}

func NewRenderer(hotkeys *config.HotkeyMatcher) *Renderer {
	r := &Renderer{
		Theme:        material.NewTheme(),
		Hotkeys:      hotkeys,
		ThumbEdge:    128,
		modeBtns:     make(map[pane.ViewMode]*widget.Clickable),
		layoutBtns:   make(map[splits.ID]*widget.Clickable),
		panes:        make(map[string]*paneWidgets),
		images:       newImageOps(),
		profileItems: make(map[string]*widget.Clickable),
		createFor:    -1,
	}
	for _, m := range viewModes {
		r.modeBtns[m] = new(widget.Clickable)
	}
	for _, id := range splits.IDs() {
		r.layoutBtns[id] = new(widget.Clickable)
	}
	r.createEditor.SingleLine = true
	r.createEditor.Submit = true
	for _, e := range []*widget.Editor{&r.editName, &r.editDisplay, &r.editProps} {
		e.SingleLine = true
	}
	return r
}

// Layout draws one frame and returns the action it produced, if any.
func (r *Renderer) Layout(gtx layout.Context, state *State) UIEvent {
	var eventOut UIEvent

	modal := state.Drop != nil || state.Error != nil || r.createFor >= 0 || r.editFor != ""
	if !modal {
		r.processHotkeys(gtx, state, &eventOut)
	}

	layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.layoutMenuBar(gtx, state, &eventOut)
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.layoutConfigBanner(gtx, state)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return r.layoutArea(gtx, state, &eventOut)
		}),
	)

	switch {
	case state.Error != nil:
		r.layoutErrorDialog(gtx, state.Error, &eventOut)
	case state.Drop != nil:
		r.layoutDropDialog(gtx, state.Drop, &eventOut)
	case r.createFor >= 0:
		r.layoutCreateProfileDialog(gtx, &eventOut)
	case r.editFor != "":
		r.layoutEditProfileDialog(gtx, &eventOut)
	}

	r.prune(state)
	if eventOut.Action != ActionNone {
		debug.Log(debug.UI, "Layout: action %d pane %d", eventOut.Action, eventOut.Pane)
	}
	return eventOut
}

// processHotkeys matches configured shortcuts. They act on the active pane.
func (r *Renderer) processHotkeys(gtx layout.Context, state *State, eventOut *UIEvent) {
	if r.Hotkeys == nil {
		return
	}
	active := activeIndex(state)
	hk := r.Hotkeys

	for _, h := range hk.All() {
		for {
			ev, ok := gtx.Event(h.Filter(nil))
			if !ok {
				break
			}
			e, ok := ev.(key.Event)
			if !ok || e.State != key.Press || !h.Matches(e) {
				continue
			}
			switch h {
			case hk.Narrow:
				*eventOut = UIEvent{Action: ActionSetViewMode, Pane: active, ViewMode: pane.Narrow}
			case hk.Detailed:
				*eventOut = UIEvent{Action: ActionSetViewMode, Pane: active, ViewMode: pane.Detailed}
			case hk.Images:
				*eventOut = UIEvent{Action: ActionSetViewMode, Pane: active, ViewMode: pane.Images}
			case hk.NextPane:
				*eventOut = UIEvent{Action: ActionCyclePane, Pane: 1}
			case hk.PrevPane:
				*eventOut = UIEvent{Action: ActionCyclePane, Pane: -1}
			case hk.Up:
				*eventOut = UIEvent{Action: ActionUp, Pane: active}
			case hk.Refresh:
				*eventOut = UIEvent{Action: ActionRefresh, Pane: active}
			default:
				for id, lh := range hk.Layouts {
					if lh == h {
						*eventOut = UIEvent{Action: ActionChangeLayout, LayoutID: splits.ID(id)}
					}
				}
			}
		}
	}
}

func activeIndex(state *State) int {
	for _, p := range state.Panes {
		if p.Active {
			return p.Index
		}
	}
	return 0
}

func (r *Renderer) layoutMenuBar(gtx layout.Context, state *State, eventOut *UIEvent) layout.Dimensions {
	active := activeIndex(state)
	for _, m := range viewModes {
		if r.modeBtns[m].Clicked(gtx) {
			*eventOut = UIEvent{Action: ActionSetViewMode, Pane: active, ViewMode: m}
		}
	}
	for _, id := range splits.IDs() {
		if r.layoutBtns[id].Clicked(gtx) {
			*eventOut = UIEvent{Action: ActionChangeLayout, LayoutID: id}
		}
	}

	activeMode := state.ViewMode
	if active < len(state.Panes) {
		activeMode = state.Panes[active].Mode
	}

	var items []layout.FlexChild
	for _, m := range viewModes {
		items = append(items, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.toolButton(gtx, r.modeBtns[m], modeLabel(m), m == activeMode)
		}))
	}
	items = append(items, layout.Rigid(layout.Spacer{Width: unit.Dp(16)}.Layout))
	for _, id := range splits.IDs() {
		items = append(items, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return r.toolButton(gtx, r.layoutBtns[id], id.Title(), id == state.LayoutID)
		}))
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return withBackground(gtx, colHeader, func(gtx layout.Context) layout.Dimensions {
				return layout.UniformInset(unit.Dp(4)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, items...)
				})
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return separator(gtx, colLightGray)
		}),
	)
}

func modeLabel(m pane.ViewMode) string {
	s := m.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

func (r *Renderer) layoutConfigBanner(gtx layout.Context, state *State) layout.Dimensions {
	if state.ConfigError == "" {
		return layout.Dimensions{}
	}
	gtx.Constraints.Min.X = gtx.Constraints.Max.X
	return withBackground(gtx, colErrorBannerBg, func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(6)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body2(r.Theme, "config.json could not be parsed, using defaults: "+state.ConfigError)
			lbl.Color = colErrorBannerText
			return lbl.Layout(gtx)
		})
	})
}

// areaSlot is one leaf of the split tree placed in the pane area. Pane is
// the pane index for pane slots and -1 for static panels.
type areaSlot struct {
	Node *splits.Node
	Pane int
	Rect image.Rectangle
}

// areaSlots places root's leaves in an area of the given size, leaving gap
// pixels between neighbours. Pane slots are numbered in pre-order, the same
// order the layout engine created the panes in.
func areaSlots(root *splits.Node, size image.Point, gap int) []areaSlot {
	regions := splits.Regions(root, image.Rectangle{Max: size})
	slots := make([]areaSlot, 0, len(regions))
	next := 0
	for _, reg := range regions {
		slot := areaSlot{Node: reg.Node, Pane: -1, Rect: reg.Rect}
		if reg.Node.Kind == splits.PaneSlot {
			slot.Pane = next
			next++
		}
		// Inner edges only, so the outer border stays flush
		if slot.Rect.Min.X > 0 {
			slot.Rect.Min.X += gap
		}
		if slot.Rect.Min.Y > 0 {
			slot.Rect.Min.Y += gap
		}
		slots = append(slots, slot)
	}
	return slots
}

// layoutArea draws the split tree, one leaf per region.
func (r *Renderer) layoutArea(gtx layout.Context, state *State, eventOut *UIEvent) layout.Dimensions {
	size := gtx.Constraints.Max
	if state.Root == nil {
		return layout.Dimensions{Size: size}
	}
	paint.FillShape(gtx.Ops, colLightGray, clip.Rect{Max: size}.Op())

	for _, slot := range areaSlots(state.Root, size, gtx.Dp(2)) {
		if slot.Rect.Empty() {
			continue
		}
		cgtx := gtx
		cgtx.Constraints = layout.Exact(slot.Rect.Size())
		off := op.Offset(slot.Rect.Min).Push(gtx.Ops)
		switch {
		case slot.Pane >= 0 && slot.Pane < len(state.Panes):
			r.layoutPane(cgtx, state, &state.Panes[slot.Pane], eventOut)
		case slot.Node.Kind == splits.StaticPanelSlot:
			r.layoutPanel(cgtx, slot.Node.Panel, state)
		}
		off.Pop()
	}
	return layout.Dimensions{Size: size}
}

// layoutPanel draws a static panel. The properties panel lists the fields
// the active pane's profile marks as properties.
func (r *Renderer) layoutPanel(gtx layout.Context, panel splits.Panel, state *State) layout.Dimensions {
	gtx.Constraints.Min = gtx.Constraints.Max
	return withBackground(gtx, colHeader, func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			children := []layout.FlexChild{
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					lbl := material.H6(r.Theme, string(panel))
					lbl.Font.Weight = font.Bold
					return lbl.Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			}
			for _, field := range state.Properties {
				children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(r.Theme, field)
					lbl.Color = colGray
					return lbl.Layout(gtx)
				}))
			}
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
		})
	})
}

func (r *Renderer) layoutErrorDialog(gtx layout.Context, prompt *ErrorPrompt, eventOut *UIEvent) layout.Dimensions {
	if r.errorOK.Clicked(gtx) {
		*eventOut = UIEvent{Action: ActionDismissError}
	}
	return r.modalBackdrop(gtx, 420, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				h := material.H6(r.Theme, prompt.Title)
				h.Color = colDanger
				return h.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(material.Body1(r.Theme, prompt.Message).Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return r.dialogButton(gtx, &r.errorOK, "OK", colAccent)
			}),
		)
	})
}

func (r *Renderer) layoutDropDialog(gtx layout.Context, prompt *DropPrompt, eventOut *UIEvent) layout.Dimensions {
	switch {
	case r.dropCopy.Clicked(gtx):
		*eventOut = UIEvent{Action: ActionDropChoice, DropOp: pane.DropCopy}
	case r.dropMove.Clicked(gtx):
		*eventOut = UIEvent{Action: ActionDropChoice, DropOp: pane.DropMove}
	case r.dropCancel.Clicked(gtx):
		*eventOut = UIEvent{Action: ActionDropChoice, DropOp: pane.DropCancel}
	}

	items := "1 item"
	if n := len(prompt.Sources); n != 1 {
		items = fmt.Sprintf("%d items", n)
	}
	return r.modalBackdrop(gtx, 420, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(material.H6(r.Theme, "Drop "+items).Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(material.Body1(r.Theme, "Destination: "+prompt.Target).Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal, Spacing: layout.SpaceBetween}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.dialogButton(gtx, &r.dropCopy, "Copy Here", colAccent)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.dialogButton(gtx, &r.dropMove, "Move Here", colSuccess)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.dialogButton(gtx, &r.dropCancel, "Cancel", colGray)
					}),
				)
			}),
		)
	})
}

// openCreateProfile shows the new-profile dialog for pane index i.
func (r *Renderer) openCreateProfile(gtx layout.Context, i int) {
	r.createFor = i
	r.createEditor.SetText("")
	gtx.Execute(key.FocusCmd{Tag: &r.createEditor})
}

func (r *Renderer) layoutCreateProfileDialog(gtx layout.Context, eventOut *UIEvent) layout.Dimensions {
	submit := r.createOK.Clicked(gtx)
	for {
		ev, ok := r.createEditor.Update(gtx)
		if !ok {
			break
		}
		if _, ok := ev.(widget.SubmitEvent); ok {
			submit = true
		}
	}
	if submit {
		if name := strings.TrimSpace(r.createEditor.Text()); name != "" {
			*eventOut = UIEvent{Action: ActionCreateProfile, Pane: r.createFor, Profile: name}
		}
		r.createFor = -1
		return layout.Dimensions{}
	}
	if r.createCancel.Clicked(gtx) {
		r.createFor = -1
		return layout.Dimensions{}
	}

	return r.modalBackdrop(gtx, 360, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(material.H6(r.Theme, "New Profile").Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return widget.Border{Color: colLightGray, Width: unit.Dp(1)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.UniformInset(unit.Dp(6)).Layout(gtx, material.Editor(r.Theme, &r.createEditor, "Profile name").Layout)
				})
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.dialogButton(gtx, &r.createOK, "Create", colAccent)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.dialogButton(gtx, &r.createCancel, "Cancel", colGray)
					}),
				)
			}),
		)
	})
}

// openEditProfile loads name into the profile editor.
func (r *Renderer) openEditProfile(gtx layout.Context, name string, f profile.Fields) {
	r.editFor = name
	r.editName.SetText(name)
	r.editDisplay.SetText(strings.Join(f.Display, ", "))
	r.editProps.SetText(strings.Join(f.Properties, ", "))
	gtx.Execute(key.FocusCmd{Tag: &r.editDisplay})
}

// splitFields parses a comma separated field list, dropping blanks.
func splitFields(s string) []string {
	fields := []string{}
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func (r *Renderer) layoutEditProfileDialog(gtx layout.Context, eventOut *UIEvent) layout.Dimensions {
	switch {
	case r.editSave.Clicked(gtx):
		*eventOut = UIEvent{
			Action:  ActionEditProfile,
			Profile: r.editFor,
			NewName: strings.TrimSpace(r.editName.Text()),
			Fields: profile.Fields{
				Display:    splitFields(r.editDisplay.Text()),
				Properties: splitFields(r.editProps.Text()),
			},
		}
		r.editFor = ""
		return layout.Dimensions{}
	case r.editDelete.Clicked(gtx):
		*eventOut = UIEvent{Action: ActionDeleteProfile, Profile: r.editFor}
		r.editFor = ""
		return layout.Dimensions{}
	case r.editCancel.Clicked(gtx):
		r.editFor = ""
		return layout.Dimensions{}
	}

	field := func(label string, ed *widget.Editor, hint string) layout.FlexChild {
		return layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					lbl := material.Caption(r.Theme, label)
					lbl.Color = colGray
					return lbl.Layout(gtx)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return widget.Border{Color: colLightGray, Width: unit.Dp(1)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
						return layout.UniformInset(unit.Dp(6)).Layout(gtx, material.Editor(r.Theme, ed, hint).Layout)
					})
				}),
				layout.Rigid(layout.Spacer{Height: unit.Dp(10)}.Layout),
			)
		})
	}

	return r.modalBackdrop(gtx, 460, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(material.H6(r.Theme, "Edit Profile").Layout),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			field("Name", &r.editName, "Profile name"),
			field("Display fields", &r.editDisplay, "Name, Size, Type, Date modified"),
			field("Property fields", &r.editProps, "Dimensions, Artist"),
			layout.Rigid(layout.Spacer{Height: unit.Dp(6)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.dialogButton(gtx, &r.editSave, "Save", colAccent)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.dialogButton(gtx, &r.editDelete, "Delete", colDanger)
					}),
					layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						return r.dialogButton(gtx, &r.editCancel, "Cancel", colGray)
					}),
				)
			}),
		)
	})
}

// prune drops widget state of panes and rows that were not drawn.
func (r *Renderer) prune(state *State) {
	live := make(map[string]bool, len(state.Panes))
	for _, p := range state.Panes {
		live[p.ID] = true
	}
	for id := range r.panes {
		if !live[id] {
			delete(r.panes, id)
		}
	}
	if r.profileMenu != "" && !live[r.profileMenu] {
		r.profileMenu = ""
	}
	for name := range r.profileItems {
		if !slices.Contains(state.Profiles, name) {
			delete(r.profileItems, name)
		}
	}
	r.images.sweep()
}

func (r *Renderer) profileItem(name string) *widget.Clickable {
	clk, ok := r.profileItems[name]
	if !ok {
		clk = new(widget.Clickable)
		r.profileItems[name] = clk
	}
	return clk
}

// isCreateNew reports whether a profile menu entry opens the create dialog.
func isCreateNew(name string) bool {
	return name == profile.CreateNewName
}
