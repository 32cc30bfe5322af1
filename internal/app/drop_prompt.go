package app

import (
	"sync"

	"github.com/justyntemme/panes/internal/pane"
	"github.com/justyntemme/panes/internal/ui"
)

// dropPrompt passes the user's drop choice from the window goroutine to the
// drop goroutine waiting in ask. Callers run one ask at a time.
type dropPrompt struct {
	mu         sync.Mutex
	prompt     *ui.DropPrompt
	answers    chan pane.DropOp // holds at most the answer to the open prompt
	invalidate func()
}

func newDropPrompt(invalidate func()) *dropPrompt {
	if invalidate == nil {
		invalidate = func() {}
	}
	return &dropPrompt{answers: make(chan pane.DropOp, 1), invalidate: invalidate}
}

// ask opens the prompt and blocks until it is answered.
func (d *dropPrompt) ask(target string, sources []string) pane.DropOp {
	d.mu.Lock()
	d.prompt = &ui.DropPrompt{Target: target, Sources: sources}
	d.mu.Unlock()
	d.invalidate()
	return <-d.answers
}

// answer closes the open prompt with op. It reports false when no prompt is
// open, in which case op is dropped.
func (d *dropPrompt) answer(op pane.DropOp) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.prompt == nil {
		return false
	}
	d.prompt = nil
	d.answers <- op
	return true
}

// current returns the open prompt, or nil.
func (d *dropPrompt) current() *ui.DropPrompt {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.prompt
}
