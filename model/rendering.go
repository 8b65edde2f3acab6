package model

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

const (
	gridPosBlock = "██"
	gridPosEmpty = "  "

	// ANSI: cursor home, clear screen
	clearSequence = "\033[H\033[2J"
)

// Renderer draws one frame of a grid
type Renderer interface {
	Render(g StateReader) error
}

// TerminalRenderer implements basic terminal rendering
type TerminalRenderer struct {
	out         io.Writer
	clearScreen bool
	status      func() string
}

// NewTerminalRenderer creates a renderer writing to out. When clearScreen is
// set every frame starts by clearing the terminal.
func NewTerminalRenderer(out io.Writer, clearScreen bool) *TerminalRenderer {
	return &TerminalRenderer{out: out, clearScreen: clearScreen}
}

// WithStatus prints status() as a header line above every frame
func (r *TerminalRenderer) WithStatus(status func() string) *TerminalRenderer {
	r.status = status
	return r
}

// Render writes the grid row by row, each row newline terminated
func (r *TerminalRenderer) Render(g StateReader) error {
	w := bufio.NewWriter(r.out)
	if r.clearScreen {
		w.WriteString(clearSequence)
	}
	if r.status != nil {
		w.WriteString(r.status())
		w.WriteString("\n\n")
	}
	for row := range g.Width() {
		for col := range g.Height() {
			if g.CellState(row, col) == Alive {
				w.WriteString(gridPosBlock)
			} else {
				w.WriteString(gridPosEmpty)
			}
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "[TerminalRenderer.Render] failed to write frame")
	}
	return nil
}

// NopRenderer discards frames, for headless runs
type NopRenderer struct{}

func (NopRenderer) Render(StateReader) error { return nil }
