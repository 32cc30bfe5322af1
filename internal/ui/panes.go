package ui

import (
	"image"
	"io"

	"gioui.org/font"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/io/transfer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/justyntemme/panes/internal/debug"
	"github.com/justyntemme/panes/internal/pane"
	"github.com/justyntemme/panes/internal/profile"
	"github.com/justyntemme/panes/internal/thumbs"
)

func (r *Renderer) widgetsFor(id string) *paneWidgets {
	w, ok := r.panes[id]
	if !ok {
		w = newPaneWidgets()
		r.panes[id] = w
	}
	return w
}

// layoutPane draws one pane. A press anywhere in it focuses the pane, and
// the whole pane is a drop target for FileDragMIME.
func (r *Renderer) layoutPane(gtx layout.Context, state *State, pv *PaneView, eventOut *UIEvent) layout.Dimensions {
	w := r.widgetsFor(pv.ID)

	for {
		ev, ok := gtx.Event(pointer.Filter{Target: &w.focusTag, Kinds: pointer.Press})
		if !ok {
			break
		}
		if _, ok := ev.(pointer.Event); ok && !pv.Active {
			*eventOut = UIEvent{Action: ActionFocusPane, Pane: pv.Index}
		}
	}
	for {
		ev, ok := gtx.Event(transfer.TargetFilter{Target: &w.dropTag, Type: FileDragMIME})
		if !ok {
			break
		}
		if e, ok := ev.(transfer.DataEvent); ok && e.Type == FileDragMIME {
			rc := e.Open()
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				debug.Log(debug.UI, "drop read: %v", err)
				continue
			}
			if sources := pane.ParseDropList(string(data)); len(sources) > 0 {
				*eventOut = UIEvent{Action: ActionDrop, Pane: pv.Index, Sources: sources}
			}
		}
	}

	gtx.Constraints.Min = gtx.Constraints.Max
	dims := layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return fill(gtx, colWhite)
		}),
		layout.Stacked(func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return r.layoutPaneHeader(gtx, state, pv, w, eventOut)
				}),
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					if pv.Mode == pane.Images {
						return r.layoutThumbGrid(gtx, pv, w, eventOut)
					}
					return r.layoutRows(gtx, pv, w, eventOut)
				}),
			)
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			if !pv.Active {
				return layout.Dimensions{}
			}
			return r.activeBorder(gtx)
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			defer pointer.PassOp{}.Push(gtx.Ops).Pop()
			defer clip.Rect{Max: gtx.Constraints.Min}.Push(gtx.Ops).Pop()
			event.Op(gtx.Ops, &w.focusTag)
			event.Op(gtx.Ops, &w.dropTag)
			return layout.Dimensions{Size: gtx.Constraints.Min}
		}),
		layout.Stacked(func(gtx layout.Context) layout.Dimensions {
			if r.profileMenu != pv.ID {
				return layout.Dimensions{}
			}
			return r.layoutProfileMenu(gtx, state, pv, eventOut)
		}),
	)
	return dims
}

// activeBorder outlines the highlighted pane.
func (r *Renderer) activeBorder(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Min
	t := gtx.Dp(2)
	for _, rect := range []image.Rectangle{
		image.Rect(0, 0, size.X, t),
		image.Rect(0, size.Y-t, size.X, size.Y),
		image.Rect(0, 0, t, size.Y),
		image.Rect(size.X-t, 0, size.X, size.Y),
	} {
		paint.FillShape(gtx.Ops, colAccent, clip.Rect(rect).Op())
	}
	return layout.Dimensions{Size: size}
}

func (r *Renderer) layoutPaneHeader(gtx layout.Context, state *State, pv *PaneView, w *paneWidgets, eventOut *UIEvent) layout.Dimensions {
	if w.upBtn.Clicked(gtx) {
		*eventOut = UIEvent{Action: ActionUp, Pane: pv.Index}
	}
	if w.refreshBtn.Clicked(gtx) {
		*eventOut = UIEvent{Action: ActionRefresh, Pane: pv.Index}
	}
	if w.profileBtn.Clicked(gtx) {
		if r.profileMenu == pv.ID {
			r.profileMenu = ""
		} else {
			r.profileMenu = pv.ID
		}
	}

	gtx.Constraints.Min.Y = 0
	return withBackground(gtx, colHeader, func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(8), Right: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
				layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
					return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							lbl := material.Body1(r.Theme, pv.Title)
							lbl.Font.Weight = font.Bold
							lbl.MaxLines = 1
							return lbl.Layout(gtx)
						}),
						layout.Rigid(func(gtx layout.Context) layout.Dimensions {
							status := pv.Path
							if pv.Mode == pane.Images && pv.Scan == thumbs.Running {
								status += "  (loading thumbnails)"
							}
							lbl := material.Caption(r.Theme, status)
							lbl.Color = colGray
							lbl.MaxLines = 1
							return lbl.Layout(gtx)
						}),
					)
				}),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return r.toolButton(gtx, &w.profileBtn, pv.Profile, r.profileMenu == pv.ID)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return r.toolButton(gtx, &w.upBtn, "Up", false)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					return r.toolButton(gtx, &w.refreshBtn, "Refresh", false)
				}),
			)
		})
	})
}

// layoutProfileMenu is the popup listing every selectable profile.
func (r *Renderer) layoutProfileMenu(gtx layout.Context, state *State, pv *PaneView, eventOut *UIEvent) layout.Dimensions {
	w := r.widgetsFor(pv.ID)
	for _, name := range state.Profiles {
		if !r.profileItem(name).Clicked(gtx) {
			continue
		}
		r.profileMenu = ""
		if isCreateNew(name) {
			r.openCreateProfile(gtx, pv.Index)
		} else {
			*eventOut = UIEvent{Action: ActionSetProfile, Pane: pv.Index, Profile: name}
		}
	}
	editable := !profile.IsReserved(pv.Profile)
	if editable && w.editBtn.Clicked(gtx) {
		r.profileMenu = ""
		r.openEditProfile(gtx, pv.Profile, state.ProfileFields[pv.Profile])
	}

	return layout.Inset{Top: unit.Dp(44), Left: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min = image.Point{}
		gtx.Constraints.Max.X = gtx.Dp(220)
		return widget.Border{Color: colLightGray, Width: unit.Dp(1), CornerRadius: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return withBackground(gtx, colWhite, func(gtx layout.Context) layout.Dimensions {
				var items []layout.FlexChild
				for _, name := range state.Profiles {
					items = append(items, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						gtx.Constraints.Min.X = gtx.Constraints.Max.X
						return r.toolButton(gtx, r.profileItem(name), name, name == pv.Profile)
					}))
				}
				if editable {
					items = append(items, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						return separator(gtx, colLightGray)
					}), layout.Rigid(func(gtx layout.Context) layout.Dimensions {
						gtx.Constraints.Min.X = gtx.Constraints.Max.X
						return r.toolButton(gtx, &w.editBtn, "Edit \""+pv.Profile+"\"...", false)
					}))
				}
				return layout.Flex{Axis: layout.Vertical}.Layout(gtx, items...)
			})
		})
	})
}

// columnWeights gives the name column more room than the others.
func columnWeights(cols []pane.Column) []float32 {
	out := make([]float32, len(cols))
	for i, c := range cols {
		switch c.Index {
		case pane.ColName:
			out[i] = 0.45
		case pane.ColDateModified:
			out[i] = 0.25
		default:
			out[i] = 0.15
		}
	}
	return out
}

func (r *Renderer) layoutRows(gtx layout.Context, pv *PaneView, w *paneWidgets, eventOut *UIEvent) layout.Dimensions {
	weights := columnWeights(pv.Columns)

	live := make(map[string]bool, len(pv.Rows))
	for _, row := range pv.Rows {
		live[row.Entry.Path] = true
	}
	for path := range w.rows {
		if !live[path] {
			delete(w.rows, path)
		}
	}

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			if pv.Mode != pane.Detailed {
				return layout.Dimensions{}
			}
			return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				cells := make([]layout.FlexChild, len(pv.Columns))
				for i, c := range pv.Columns {
					cells[i] = layout.Flexed(weights[i], func(gtx layout.Context) layout.Dimensions {
						lbl := material.Body2(r.Theme, c.Title)
						lbl.Font.Weight = font.Bold
						if c.Index == pane.ColSize {
							lbl.Alignment = text.End
						}
						return lbl.Layout(gtx)
					})
				}
				return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, cells...)
			})
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return material.List(r.Theme, &w.list).Layout(gtx, len(pv.Rows), func(gtx layout.Context, i int) layout.Dimensions {
				return r.layoutRow(gtx, pv, w, &pv.Rows[i], weights, eventOut)
			})
		}),
	)
}

func (r *Renderer) layoutRow(gtx layout.Context, pv *PaneView, w *paneWidgets, row *pane.Row, weights []float32, eventOut *UIEvent) layout.Dimensions {
	rw := w.row(row.Entry.Path)
	gtx.Constraints.Min.X = gtx.Constraints.Max.X

	content := func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Top: unit.Dp(6), Bottom: unit.Dp(6), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			cells := make([]layout.FlexChild, len(row.Cells))
			for i, cell := range row.Cells {
				col := pv.Columns[i]
				cells[i] = layout.Flexed(weights[i], func(gtx layout.Context) layout.Dimensions {
					lbl := material.Body2(r.Theme, cell)
					lbl.MaxLines = 1
					switch {
					case col.Index == pane.ColName && row.Entry.IsDir:
						lbl.Color = colDirBlue
						lbl.Font.Weight = font.Bold
					case col.Index != pane.ColName:
						lbl.Color = colGray
					}
					if col.Index == pane.ColSize {
						lbl.Alignment = text.End
					}
					return lbl.Layout(gtx)
				})
			}
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, cells...)
		})
	}
	shadow := func(gtx layout.Context) layout.Dimensions {
		return withBackground(gtx, colSelected, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(4)).Layout(gtx, material.Body2(r.Theme, row.Entry.Name).Layout)
		})
	}

	dims, clicked := rw.drag.Layout(gtx, content, shadow)
	rw.drag.Update(gtx, []string{row.Entry.Path})
	if clicked && row.Entry.IsDir {
		*eventOut = UIEvent{Action: ActionNavigate, Pane: pv.Index, Path: row.Entry.Path}
	}
	return dims
}

// layoutThumbGrid draws the delivered thumbnails row by row. Cells are
// ThumbEdge wide plus a caption.
func (r *Renderer) layoutThumbGrid(gtx layout.Context, pv *PaneView, w *paneWidgets, eventOut *UIEvent) layout.Dimensions {
	edge := gtx.Dp(unit.Dp(r.ThumbEdge))
	pad := gtx.Dp(8)
	perRow := max(1, gtx.Constraints.Max.X/(edge+pad))
	rows := (len(pv.Thumbs) + perRow - 1) / perRow

	live := make(map[string]bool, len(pv.Thumbs))
	for _, it := range pv.Thumbs {
		live[it.Path] = true
	}
	for path := range w.rows {
		if !live[path] {
			delete(w.rows, path)
		}
	}

	return material.List(r.Theme, &w.grid).Layout(gtx, rows, func(gtx layout.Context, row int) layout.Dimensions {
		var cells []layout.FlexChild
		for i := row * perRow; i < min((row+1)*perRow, len(pv.Thumbs)); i++ {
			it := &pv.Thumbs[i]
			cells = append(cells, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return layout.UniformInset(unit.Dp(4)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return r.layoutThumb(gtx, it, w, edge)
				})
			}))
		}
		return layout.Flex{Axis: layout.Horizontal}.Layout(gtx, cells...)
	})
}

func (r *Renderer) layoutThumb(gtx layout.Context, it *thumbs.Item, w *paneWidgets, edge int) layout.Dimensions {
	rw := w.row(it.Path)
	imgOp := r.images.get(it.Path, it.Thumb)

	content := func(gtx layout.Context) layout.Dimensions {
		gtx.Constraints.Min.X = edge
		gtx.Constraints.Max.X = edge
		return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints = layout.Exact(image.Pt(edge, edge))
				return widget.Image{Src: imgOp, Fit: widget.Contain, Position: layout.Center}.Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Caption(r.Theme, it.Name)
				lbl.MaxLines = 1
				lbl.Alignment = text.Middle
				return lbl.Layout(gtx)
			}),
		)
	}
	shadow := func(gtx layout.Context) layout.Dimensions {
		return withBackground(gtx, colSelected, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(4)).Layout(gtx, material.Caption(r.Theme, it.Name).Layout)
		})
	}

	dims, _ := rw.drag.Layout(gtx, content, shadow)
	rw.drag.Update(gtx, []string{it.Path})
	return dims
}
