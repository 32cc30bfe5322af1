package ui

import (
	"io"
	"strings"

	"gioui.org/f32"
	"gioui.org/gesture"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/io/transfer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
)

// ClickAndDraggable combines a click gesture with a drag source on the
// same area. gesture.Drag only grabs the pointer after its movement
// threshold, so short presses still arrive as clicks.
type ClickAndDraggable struct {
	Type string // MIME type offered on drop

	click gesture.Click
	drag  gesture.Drag

	start   f32.Point
	offset  f32.Point
	pid     pointer.ID
	dragged bool
}

// Dragging reports whether the pointer moved past the drag threshold.
func (c *ClickAndDraggable) Dragging() bool {
	return c.drag.Pressed() && c.dragged
}

// Update answers a pending transfer request with paths. Call it after
// Layout in the same frame.
func (c *ClickAndDraggable) Update(gtx layout.Context, paths []string) {
	for {
		ev, ok := gtx.Event(transfer.SourceFilter{Target: c, Type: c.Type})
		if !ok {
			return
		}
		if e, ok := ev.(transfer.RequestEvent); ok {
			data := strings.Join(paths, "\n")
			gtx.Execute(transfer.OfferCmd{Tag: c, Type: e.Type, Data: io.NopCloser(strings.NewReader(data))})
		}
	}
}

// Layout draws w, registers the gestures over it and draws shadow at the
// pointer while dragging. It reports whether w was clicked.
func (c *ClickAndDraggable) Layout(gtx layout.Context, w, shadow layout.Widget) (layout.Dimensions, bool) {
	clicked := false
	for {
		e, ok := c.click.Update(gtx.Source)
		if !ok {
			break
		}
		switch e.Kind {
		case gesture.KindClick:
			if !c.dragged {
				clicked = true
			}
		case gesture.KindCancel:
			c.dragged = false
		}
	}

	for {
		e, ok := c.drag.Update(gtx.Metric, gtx.Source, gesture.Both)
		if !ok {
			break
		}
		switch e.Kind {
		case pointer.Press:
			c.start = e.Position
			c.offset = f32.Point{}
			c.pid = e.PointerID
			c.dragged = false
		case pointer.Drag:
			if e.PointerID == c.pid {
				c.dragged = true
				c.offset = e.Position.Sub(c.start)
			}
		case pointer.Release, pointer.Cancel:
			c.dragged = false
		}
	}

	dims := w(gtx)

	defer clip.Rect{Max: dims.Size}.Push(gtx.Ops).Pop()
	c.click.Add(gtx.Ops)
	c.drag.Add(gtx.Ops)
	event.Op(gtx.Ops, c)

	if shadow != nil && c.Dragging() {
		rec := op.Record(gtx.Ops)
		op.Offset(c.offset.Round()).Add(gtx.Ops)
		shadow(gtx)
		op.Defer(gtx.Ops, rec.Stop())
	}
	return dims, clicked
}
