package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCell_ZeroValueIsDead(t *testing.T) {
	var c Cell
	assert.Equal(t, Dead, c.State())
	assert.Equal(t, Dead, c.Next())
}

func TestNewCell(t *testing.T) {
	for _, state := range []CellState{Dead, Alive} {
		t.Run(state.String(), func(t *testing.T) {
			c := NewCell(state)
			assert.Equal(t, state, c.State())
			assert.Equal(t, state, c.Next())
		})
	}
}

func TestCell_StageNextLeavesCurrent(t *testing.T) {
	c := NewCell(Alive)
	c.StageNext(Dead)

	assert.Equal(t, Alive, c.State())
	assert.Equal(t, Dead, c.Next())
}

func TestCell_CommitIsIdempotent(t *testing.T) {
	c := NewCell(Dead)
	c.StageNext(Alive)

	c.Commit()
	assert.Equal(t, Alive, c.State())
	assert.Equal(t, Alive, c.Next())

	c.Commit()
	assert.Equal(t, Alive, c.State())
	assert.Equal(t, Alive, c.Next())
}
