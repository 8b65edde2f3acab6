// Package ui renders a running session in a desktop window.
package ui

import (
	"context"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/sheikhrachel/go-gol-engine/driver"
	"github.com/sheikhrachel/go-gol-engine/model"
)

const statusBarHeight = 20

var (
	BackgroundColor = color.RGBA{16, 16, 16, 255}
	AliveColor      = color.RGBA{80, 200, 120, 255}
	StatusColor     = color.White
)

// Window is an ebiten.Game stepping a session every ticksPerGeneration frames.
// Rows are drawn top to bottom, columns left to right, matching the terminal.
// The window terminates when ctx is done.
type Window struct {
	ctx      context.Context
	session  *driver.Session
	pacer    *driver.FramePacer
	cellSize int
	face     font.Face
}

// NewWindow wraps a session for display
func NewWindow(ctx context.Context, session *driver.Session, cellSize, ticksPerGeneration int) *Window {
	return &Window{
		ctx:      ctx,
		session:  session,
		pacer:    driver.NewFramePacer(session, ticksPerGeneration),
		cellSize: cellSize,
		face:     basicfont.Face7x13,
	}
}

// Size returns the window size in pixels
func (w *Window) Size() (int, int) {
	g := w.session.Grid()
	return g.Height() * w.cellSize, g.Width()*w.cellSize + statusBarHeight
}

// Reason returns why the session stopped, or ReasonNone while running
func (w *Window) Reason() driver.StopReason {
	return w.pacer.Reason()
}

// Update advances the session on its tick schedule. A stopped session stays
// on screen until the window is closed; closing a running one cancels it.
func (w *Window) Update() error {
	if ebiten.IsWindowBeingClosed() {
		w.pacer.Cancel()
		return ebiten.Termination
	}
	if !w.pacer.Tick(w.ctx) {
		return ebiten.Termination
	}
	return nil
}

// Draw paints alive cells and a status line
func (w *Window) Draw(screen *ebiten.Image) {
	screen.Fill(BackgroundColor)

	g := w.session.Grid()
	size := float32(w.cellSize)
	for row := range g.Width() {
		for col := range g.Height() {
			if g.CellState(row, col) != model.Alive {
				continue
			}
			x := float32(col) * size
			y := float32(row)*size + statusBarHeight
			vector.DrawFilledRect(screen, x, y, size-1, size-1, AliveColor, false)
		}
	}

	text.Draw(screen, w.session.Status(), w.face, 5, 14, StatusColor)
}

// Layout keeps a fixed logical size
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.Size()
}
