package pane

import (
	"net/url"
	"strings"

	"github.com/justyntemme/panes/internal/debug"
	"github.com/justyntemme/panes/internal/fs"
)

// DropOp is the user's answer to a drop.
type DropOp int

const (
	DropCancel DropOp = iota
	DropCopy
	DropMove
)

func (o DropOp) String() string {
	switch o {
	case DropCopy:
		return "copy"
	case DropMove:
		return "move"
	}
	return "cancel"
}

// DropChooser asks the user what to do with files dropped on a pane.
type DropChooser interface {
	ChooseDrop(target *Pane, sources []string) DropOp
}

// DropChooserFunc adapts a function to DropChooser.
type DropChooserFunc func(target *Pane, sources []string) DropOp

func (f DropChooserFunc) ChooseDrop(target *Pane, sources []string) DropOp {
	return f(target, sources)
}

// DropFailure is one source that could not be copied or moved.
type DropFailure struct {
	Source string
	Err    error
}

// DropOutcome summarizes a drop.
type DropOutcome struct {
	Op        DropOp
	Dest      string
	Attempted []string
	Skipped   []string // sources that no longer exist
	Failures  []DropFailure
}

// SourcePath turns a dropped item, either a file:// URL or a plain path,
// into a local path. Other URL schemes yield "".
func SourcePath(item string) string {
	item = strings.TrimSpace(item)
	if !strings.Contains(item, "://") {
		return item
	}
	u, err := url.Parse(item)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return u.Path
}

// ParseDropList splits newline-separated drop data into local paths.
func ParseDropList(data string) []string {
	var out []string
	for _, line := range strings.Split(data, "\n") {
		if path := SourcePath(line); path != "" {
			out = append(out, path)
		}
	}
	return out
}

// Drop resolves a drop through chooser and hands each source to the file
// operation requester with this pane's path as destination. A failed source
// does not stop the rest.
func (p *Pane) Drop(sources []string, chooser DropChooser) DropOutcome {
	out := DropOutcome{Op: DropCancel, Dest: p.Path()}
	if len(sources) == 0 || chooser == nil || p.fileOps == nil || out.Dest == "" {
		return out
	}

	out.Op = chooser.ChooseDrop(p, sources)
	debug.Log(debug.PANE, "Drop: pane %d op=%s sources=%d", p.index, out.Op, len(sources))
	if out.Op == DropCancel {
		return out
	}

	for _, item := range sources {
		src := SourcePath(item)
		if src == "" || !fs.Exists(src) {
			out.Skipped = append(out.Skipped, item)
			continue
		}
		out.Attempted = append(out.Attempted, src)

		var err error
		if out.Op == DropMove {
			err = p.fileOps.Move(src, out.Dest)
		} else {
			err = p.fileOps.Copy(src, out.Dest)
		}
		if err != nil {
			debug.Log(debug.PANE, "Drop: %s %s failed: %v", out.Op, src, err)
			out.Failures = append(out.Failures, DropFailure{Source: src, Err: err})
		}
	}

	if len(out.Failures) < len(out.Attempted) {
		p.Refresh()
	}
	return out
}
