package tui

import (
	"context"

	"github.com/baaaaaaaka/eledminer/internal/router"
)

// Prompt is a file dialog answered by typing a path into the terminal UI.
// Open blocks until the UI answers or ctx ends.
type Prompt struct {
	reqs chan *promptRequest
}

type promptRequest struct {
	kind   router.DialogKind
	buffer string
	reply  chan promptResult
}

type promptResult struct {
	path string
	ok   bool
}

func NewPrompt() *Prompt {
	return &Prompt{reqs: make(chan *promptRequest)}
}

func (p *Prompt) Open(ctx context.Context, kind router.DialogKind) (string, bool, error) {
	req := &promptRequest{kind: kind, reply: make(chan promptResult, 1)}
	select {
	case p.reqs <- req:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.path, res.ok, nil
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
}

func (r *promptRequest) answer(path string, ok bool) {
	select {
	case r.reply <- promptResult{path: path, ok: ok}:
	default:
	}
}

func (r *promptRequest) label() string {
	if r.kind == router.DialogPHPExecutable {
		return "PHP executable: "
	}
	return "SQLite file: "
}
