package model

// CellState is the binary state of a single cell
type CellState uint8

const (
	Dead CellState = iota
	Alive
)

func (s CellState) String() string {
	if s == Alive {
		return "alive"
	}
	return "dead"
}

// Cell holds a committed state plus the state staged for the next generation.
// The zero value is a dead cell.
type Cell struct {
	current CellState
	next    CellState
}

// NewCell creates a cell whose current and staged states are both state
func NewCell(state CellState) Cell {
	return Cell{current: state, next: state}
}

// State returns the committed state of the cell
func (c *Cell) State() CellState {
	return c.current
}

// Next returns the staged state of the cell
func (c *Cell) Next() CellState {
	return c.next
}

// StageNext records the state the cell takes on the next Commit
func (c *Cell) StageNext(state CellState) {
	c.next = state
}

// Commit promotes the staged state. Calling it again without staging is a no-op.
func (c *Cell) Commit() {
	c.current = c.next
}
