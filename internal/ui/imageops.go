package ui

import (
	"image"

	"gioui.org/op/paint"

	"github.com/justyntemme/panes/internal/debug"
)

// imageOps keeps one paint.ImageOp per decoded thumbnail so the GPU upload
// happens once. Entries not drawn during a frame are dropped by sweep.
type imageOps struct {
	entries map[string]*imageOpEntry
}

type imageOpEntry struct {
	src  image.Image
	op   paint.ImageOp
	used bool
}

func newImageOps() *imageOps {
	return &imageOps{entries: make(map[string]*imageOpEntry)}
}

// get returns the op for path, rebuilding it when the thumbnail changed.
func (c *imageOps) get(path string, src image.Image) paint.ImageOp {
	e, ok := c.entries[path]
	if !ok || e.src != src {
		e = &imageOpEntry{src: src, op: paint.NewImageOp(src)}
		c.entries[path] = e
	}
	e.used = true
	return e.op
}

// sweep forgets every op not requested since the previous sweep.
func (c *imageOps) sweep() {
	for path, e := range c.entries {
		if !e.used {
			delete(c.entries, path)
			debug.Log(debug.UI_LAYOUT, "imageOps: dropped %s", path)
			continue
		}
		e.used = false
	}
}
