package ui

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

// fill paints the whole minimum constraint with c.
func fill(gtx layout.Context, c color.NRGBA) layout.Dimensions {
	paint.FillShape(gtx.Ops, c, clip.Rect{Max: gtx.Constraints.Min}.Op())
	return layout.Dimensions{Size: gtx.Constraints.Min}
}

// withBackground draws w over a background of color c.
func withBackground(gtx layout.Context, c color.NRGBA, w layout.Widget) layout.Dimensions {
	return layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx layout.Context) layout.Dimensions { return fill(gtx, c) }),
		layout.Stacked(w),
	)
}

// toolButton is a compact flat button used in bars and pane headers.
func (r *Renderer) toolButton(gtx layout.Context, clk *widget.Clickable, text string, selected bool) layout.Dimensions {
	return material.Clickable(gtx, clk, func(gtx layout.Context) layout.Dimensions {
		bg := colHeader
		if selected {
			bg = colSelected
		}
		return withBackground(gtx, bg, func(gtx layout.Context) layout.Dimensions {
			return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(8), Right: unit.Dp(8)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(r.Theme, text)
				lbl.Color = colBlack
				lbl.MaxLines = 1
				return lbl.Layout(gtx)
			})
		})
	})
}

// dialogButton is a filled button with a custom background.
func (r *Renderer) dialogButton(gtx layout.Context, clk *widget.Clickable, text string, bg color.NRGBA) layout.Dimensions {
	btn := material.Button(r.Theme, clk, text)
	btn.Background = bg
	btn.Color = colWhite
	return btn.Layout(gtx)
}

// separator draws a 1px line across the available width.
func separator(gtx layout.Context, c color.NRGBA) layout.Dimensions {
	size := image.Pt(gtx.Constraints.Max.X, gtx.Dp(1))
	paint.FillShape(gtx.Ops, c, clip.Rect{Max: size}.Op())
	return layout.Dimensions{Size: size}
}

// modalBackdrop dims the window, swallows pointer input outside the dialog
// and centers content at the given width.
func (r *Renderer) modalBackdrop(gtx layout.Context, width unit.Dp, content layout.Widget) layout.Dimensions {
	return layout.Stack{Alignment: layout.Center}.Layout(gtx,
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			defer clip.Rect{Max: gtx.Constraints.Max}.Push(gtx.Ops).Pop()
			event.Op(gtx.Ops, &r.backdropTag)
			for {
				if _, ok := gtx.Event(pointer.Filter{Target: &r.backdropTag, Kinds: pointer.Press | pointer.Release}); !ok {
					break
				}
			}
			paint.FillShape(gtx.Ops, colBackdrop, clip.Rect{Max: gtx.Constraints.Max}.Op())
			return layout.Dimensions{Size: gtx.Constraints.Max}
		}),
		layout.Stacked(func(gtx layout.Context) layout.Dimensions {
			w := gtx.Dp(width)
			gtx.Constraints.Min.X = w
			gtx.Constraints.Max.X = w
			return widget.Border{Color: colLightGray, Width: unit.Dp(1), CornerRadius: unit.Dp(4)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return withBackground(gtx, colWhite, func(gtx layout.Context) layout.Dimensions {
					return layout.UniformInset(unit.Dp(20)).Layout(gtx, content)
				})
			})
		}),
	)
}
