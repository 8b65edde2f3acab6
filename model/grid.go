package model

import (
	"crypto/md5"
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol-engine/rules"
	"github.com/sheikhrachel/go-gol-engine/utils"
)

// neighborOffsets lists the eight (row, col) deltas around a cell
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 1}, {0, 1}, {1, 1},
	{-1, 0}, {1, 0},
}

// StateReader is the read-only view renderers consume
type StateReader interface {
	Width() int
	Height() int
	CellState(row, col int) CellState
}

// Grid is a fixed-size board of cells indexed [row][col], where row spans
// the width and col spans the height. Edges do not wrap.
type Grid struct {
	width  int
	height int
	cells  [][]Cell

	// Bounding box of living cells, maintained by AdvanceBounded
	activeBounds struct {
		minRow, maxRow, minCol, maxCol int
		valid                          bool // at least one living cell
		known                          bool // box matches the committed state
	}
}

// NewGrid creates a grid of dead cells
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(utils.ErrInvalidConfiguration,
			"[NewGrid] dimensions must be positive, got %dx%d", width, height)
	}
	cells := make([][]Cell, width)
	for row := range cells {
		cells[row] = make([]Cell, height)
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  cells,
	}, nil
}

// NewGridFromSeed creates a grid shaped like seed. Entries equal to 1 start
// alive, everything else starts dead. Jagged or empty matrices are rejected.
func NewGridFromSeed(seed [][]int) (*Grid, error) {
	if len(seed) == 0 || len(seed[0]) == 0 {
		return nil, errors.Wrap(utils.ErrInvalidConfiguration, "[NewGridFromSeed] seed matrix is empty")
	}
	height := len(seed[0])
	for row := range seed {
		if len(seed[row]) != height {
			return nil, errors.Wrapf(utils.ErrInvalidConfiguration,
				"[NewGridFromSeed] row %d has %d entries, expected %d", row, len(seed[row]), height)
		}
	}

	g, err := NewGrid(len(seed), height)
	if err != nil {
		return nil, err
	}
	for row := range seed {
		for col, v := range seed[row] {
			if v == 1 {
				g.cells[row][col] = NewCell(Alive)
			}
		}
	}
	return g, nil
}

// Width returns the number of rows
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of columns
func (g *Grid) Height() int {
	return g.height
}

func (g *Grid) inBounds(row, col int) bool {
	return row >= 0 && row < g.width && col >= 0 && col < g.height
}

// CellState returns the committed state at (row, col). Out of range
// positions read as Dead.
func (g *Grid) CellState(row, col int) CellState {
	if !g.inBounds(row, col) {
		return Dead
	}
	return g.cells[row][col].State()
}

// CountLivingNeighbors counts alive cells among the in-bounds neighbors of
// (row, col), using committed state only.
func (g *Grid) CountLivingNeighbors(row, col int) int {
	count := 0
	for _, off := range neighborOffsets {
		r, c := row+off[0], col+off[1]
		if g.inBounds(r, c) && g.cells[r][c].State() == Alive {
			count++
		}
	}
	return count
}

// applyRules stages the next state of (row, col)
func (g *Grid) applyRules(row, col int) {
	cell := &g.cells[row][col]
	next := Dead
	if rules.ApplyConwayRules(g.CountLivingNeighbors(row, col), cell.State() == Alive) {
		next = Alive
	}
	cell.StageNext(next)
}

// computeRows stages next states for rows [start, end)
func (g *Grid) computeRows(start, end int) {
	for row := start; row < end; row++ {
		for col := range g.height {
			g.applyRules(row, col)
		}
	}
}

func (g *Grid) commit() {
	for row := range g.width {
		for col := range g.height {
			g.cells[row][col].Commit()
		}
	}
	g.activeBounds.known = false
}

// includeInBounds grows the active bounding box to cover (row, col)
func (g *Grid) includeInBounds(row, col int) {
	b := &g.activeBounds
	if !b.valid {
		b.minRow, b.maxRow, b.minCol, b.maxCol = row, row, col, col
		b.valid = true
		return
	}
	b.minRow = min(b.minRow, row)
	b.maxRow = max(b.maxRow, row)
	b.minCol = min(b.minCol, col)
	b.maxCol = max(b.maxCol, col)
}

// calculateActiveBounds recomputes the bounding box of living cells
func (g *Grid) calculateActiveBounds() {
	g.activeBounds.valid = false
	for row := range g.width {
		for col := range g.height {
			if g.cells[row][col].State() == Alive {
				g.includeInBounds(row, col)
			}
		}
	}
	g.activeBounds.known = true
}

// BoundingBoxSize returns the area of the smallest box holding every living
// cell, or 0 when nothing is alive
func (g *Grid) BoundingBoxSize() int {
	if !g.activeBounds.known {
		g.calculateActiveBounds()
	}
	b := g.activeBounds
	if !b.valid {
		return 0
	}
	return (b.maxRow - b.minRow + 1) * (b.maxCol - b.minCol + 1)
}

// Advance moves the grid forward one generation. Every next state is staged
// from the previous generation before any cell is committed.
func (g *Grid) Advance() {
	g.computeRows(0, g.width)
	g.commit()
}

// AdvanceParallel is Advance with the compute pass split by rows across
// workers. Workers only read committed state and only write their own rows'
// staged state, so the result matches Advance exactly.
func (g *Grid) AdvanceParallel(workers int) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		eg            errgroup.Group
		rowsPerWorker = (g.width + workers - 1) / workers // Ceiling division
	)

	for i := range workers {
		var (
			startRow = i * rowsPerWorker
			endRow   = min(startRow+rowsPerWorker, g.width)
		)
		if startRow >= g.width {
			break
		}

		eg.Go(func() error {
			g.computeRows(startRow, endRow)
			return nil
		})
	}

	// computeRows never fails; Wait is the barrier between the two passes
	_ = eg.Wait()

	g.commit()
}

// AdvanceBounded is Advance restricted to the living bounding box plus a
// one-cell margin. Cells further out are dead with no living neighbors, so
// their staged state would equal their current state anyway.
func (g *Grid) AdvanceBounded() {
	if !g.activeBounds.known {
		g.calculateActiveBounds()
	}
	b := g.activeBounds
	if !b.valid {
		return
	}

	minRow := max(0, b.minRow-1)
	maxRow := min(g.width-1, b.maxRow+1)
	minCol := max(0, b.minCol-1)
	maxCol := min(g.height-1, b.maxCol+1)

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.applyRules(row, col)
		}
	}

	// Every birth lies inside the processed region, so the new box can be
	// collected while committing it.
	g.activeBounds.valid = false
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			g.cells[row][col].Commit()
			if g.cells[row][col].State() == Alive {
				g.includeInBounds(row, col)
			}
		}
	}
	g.activeBounds.known = true
}

// CountLivingCells returns the total number of living cells
func (g *Grid) CountLivingCells() (count int) {
	for row := range g.width {
		for col := range g.height {
			if g.cells[row][col].State() == Alive {
				count++
			}
		}
	}
	return
}

// Hash returns an MD5 digest of the committed state
func (g *Grid) Hash() string {
	h := md5.New()
	buf := make([]byte, g.height)
	for row := range g.width {
		for col := range g.height {
			buf[col] = byte(g.cells[row][col].State())
		}
		h.Write(buf)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Snapshot returns the committed state as a 0/1 matrix accepted by
// NewGridFromSeed
func (g *Grid) Snapshot() [][]int {
	out := make([][]int, g.width)
	for row := range g.width {
		out[row] = make([]int, g.height)
		for col := range g.height {
			if g.cells[row][col].State() == Alive {
				out[row][col] = 1
			}
		}
	}
	return out
}
