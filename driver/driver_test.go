package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikhrachel/go-gol-engine/model"
	"github.com/sheikhrachel/go-gol-engine/seed"
	"github.com/sheikhrachel/go-gol-engine/utils"
)

// recordingRenderer keeps the living count of each frame
type recordingRenderer struct {
	frames []int
	err    error
}

func (r *recordingRenderer) Render(g model.StateReader) error {
	if r.err != nil {
		return r.err
	}
	living := 0
	for row := range g.Width() {
		for col := range g.Height() {
			if g.CellState(row, col) == model.Alive {
				living++
			}
		}
	}
	r.frames = append(r.frames, living)
	return nil
}

func gridWith(t *testing.T, width, height int, pattern [][]int, row, col int) *model.Grid {
	t.Helper()
	m := seed.Blank(width, height)
	seed.Place(m, pattern, row, col)
	g, err := model.NewGridFromSeed(m)
	require.NoError(t, err)
	return g
}

func TestSession_StopReasons(t *testing.T) {
	tests := []struct {
		name        string
		grid        func(t *testing.T) *model.Grid
		opts        Options
		reason      StopReason
		generations int
	}{
		{
			name:        "block is a still life",
			grid:        func(t *testing.T) *model.Grid { return gridWith(t, 6, 6, seed.Block, 2, 2) },
			opts:        Options{StopWhenStable: true},
			reason:      ReasonStillLife,
			generations: 1,
		},
		{
			name:        "blinker oscillates",
			grid:        func(t *testing.T) *model.Grid { return gridWith(t, 5, 5, seed.Blinker, 2, 1) },
			opts:        Options{StopWhenStable: true},
			reason:      ReasonOscillator,
			generations: 2,
		},
		{
			name: "lonely cell dies out",
			grid: func(t *testing.T) *model.Grid {
				return gridWith(t, 4, 4, [][]int{{1}}, 1, 1)
			},
			opts:        Options{StopWhenStable: true},
			reason:      ReasonExtinct,
			generations: 1,
		},
		{
			name:        "generation limit without stability checks",
			grid:        func(t *testing.T) *model.Grid { return gridWith(t, 6, 6, seed.Block, 2, 2) },
			opts:        Options{Generations: 3},
			reason:      ReasonGenerationLimit,
			generations: 3,
		},
		{
			name:        "glider hits the limit first",
			grid:        func(t *testing.T) *model.Grid { return gridWith(t, 12, 12, seed.Glider, 1, 1) },
			opts:        Options{Generations: 4, StopWhenStable: true},
			reason:      ReasonGenerationLimit,
			generations: 4,
		},
		{
			name:        "parallel advance",
			grid:        func(t *testing.T) *model.Grid { return gridWith(t, 5, 5, seed.Blinker, 2, 1) },
			opts:        Options{StopWhenStable: true, Parallel: true, Workers: 2},
			reason:      ReasonOscillator,
			generations: 2,
		},
		{
			name:        "bounded advance",
			grid:        func(t *testing.T) *model.Grid { return gridWith(t, 5, 5, seed.Blinker, 2, 1) },
			opts:        Options{StopWhenStable: true, Bounded: true},
			reason:      ReasonOscillator,
			generations: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(tt.grid(t), tt.opts)

			reason := ReasonNone
			for i := 0; i < 100 && reason == ReasonNone; i++ {
				reason = s.Step()
			}

			assert.Equal(t, tt.reason, reason)
			assert.Equal(t, tt.generations, s.Generation())
			assert.Equal(t, tt.generations, s.Stats().TotalGenerations)
		})
	}
}

func TestSession_StepStopsAdvancingAtLimit(t *testing.T) {
	s := NewSession(gridWith(t, 12, 12, seed.Glider, 1, 1), Options{Generations: 2})

	assert.Equal(t, ReasonNone, s.Step())
	assert.Equal(t, ReasonGenerationLimit, s.Step())
	hash := s.Grid().Hash()

	assert.Equal(t, ReasonGenerationLimit, s.Step())
	assert.Equal(t, 2, s.Generation())
	assert.Equal(t, hash, s.Grid().Hash())
}

func TestSession_NoLimitKeepsGoing(t *testing.T) {
	s := NewSession(gridWith(t, 5, 5, seed.Blinker, 2, 1), Options{})

	for range 50 {
		require.Equal(t, ReasonNone, s.Step())
	}
	assert.Equal(t, 50, s.Generation())
}

func TestSession_SetDelay(t *testing.T) {
	s := NewSession(gridWith(t, 3, 3, seed.Block, 0, 0), Options{Delay: time.Second})
	assert.Equal(t, time.Second, s.Delay())

	s.SetDelay(5 * time.Millisecond)
	assert.Equal(t, 5*time.Millisecond, s.Delay())
}

func TestSession_StatsMeasureTimeBetweenSteps(t *testing.T) {
	s := NewSession(gridWith(t, 5, 5, seed.Blinker, 2, 1), Options{})

	s.Step()
	time.Sleep(20 * time.Millisecond)
	s.Step()

	// Two steps at least 20ms apart cannot run faster than 100 per second
	assert.Less(t, s.Stats().GenerationsPerSecond, 100.0)
	assert.Greater(t, s.Stats().GenerationsPerSecond, 0.0)
}

func TestSession_Status(t *testing.T) {
	s := NewSession(gridWith(t, 6, 6, seed.Block, 2, 2), Options{StopWhenStable: true})
	assert.Equal(t, "Gen: 0 | Living: 4 | Density: 11.1% | Status: Active", s.Status())

	require.Equal(t, ReasonStillLife, s.Step())
	assert.Equal(t, ReasonStillLife, s.Reason())
	assert.Equal(t, "Gen: 1 | Living: 4 | Density: 11.1% | Status: still life", s.Status())
}

func TestSession_StatusBounded(t *testing.T) {
	s := NewSession(gridWith(t, 6, 6, seed.Block, 2, 2), Options{Bounded: true})
	s.Step()
	assert.Equal(t, "Gen: 1 | Living: 4 | Density: 11.1% | Status: Active | Bounding box: 4 cells", s.Status())
}

func TestOptionsFromConfig(t *testing.T) {
	config := utils.DefaultConfig()
	config.Generations = 12
	config.FrameRate = 3 * time.Millisecond
	config.UseBoundedGrid = true
	config.UseParallel = true
	config.Workers = 4

	opts := OptionsFromConfig(config)
	assert.Equal(t, Options{
		Generations:    12,
		StopWhenStable: config.StopWhenStable,
		Delay:          3 * time.Millisecond,
		Bounded:        true,
		Parallel:       true,
		Workers:        4,
	}, opts)
}

func TestRun_RendersEveryGeneration(t *testing.T) {
	s := NewSession(gridWith(t, 5, 5, seed.Blinker, 2, 1), Options{Generations: 4})
	r := &recordingRenderer{}

	result, err := Run(context.Background(), s, r)
	require.NoError(t, err)

	assert.Equal(t, Result{Generations: 4, Reason: ReasonGenerationLimit, Population: 3}, result)
	assert.Equal(t, []int{3, 3, 3, 3, 3}, r.frames)
}

func TestRun_StopsWhenStable(t *testing.T) {
	s := NewSession(gridWith(t, 4, 4, [][]int{{1}}, 1, 1), Options{StopWhenStable: true})
	r := &recordingRenderer{}

	result, err := Run(context.Background(), s, r)
	require.NoError(t, err)

	assert.Equal(t, ReasonExtinct, result.Reason)
	assert.Equal(t, 1, result.Generations)
	assert.Equal(t, 0, result.Population)
	assert.Equal(t, []int{1, 0}, r.frames)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSession(gridWith(t, 5, 5, seed.Blinker, 2, 1), Options{})
	result, err := Run(ctx, s, &recordingRenderer{})
	require.NoError(t, err)

	assert.Equal(t, ReasonCancelled, result.Reason)
	assert.Equal(t, 0, result.Generations)
}

func TestRun_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := NewSession(gridWith(t, 5, 5, seed.Blinker, 2, 1), Options{Delay: time.Hour})
	result, err := Run(ctx, s, &recordingRenderer{})
	require.NoError(t, err)

	assert.Equal(t, ReasonCancelled, result.Reason)
	assert.Equal(t, 1, result.Generations)
}

func TestRun_RenderError(t *testing.T) {
	s := NewSession(gridWith(t, 5, 5, seed.Blinker, 2, 1), Options{})
	_, err := Run(context.Background(), s, &recordingRenderer{err: errors.New("broken pipe")})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Generation())
}
