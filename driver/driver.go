// Package driver owns the generation loop: it advances a grid, renders each
// generation and decides when a run is over.
package driver

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sheikhrachel/go-gol-engine/model"
	"github.com/sheikhrachel/go-gol-engine/utils"
)

// historySize is how many past generations are kept for cycle detection
const historySize = 5

// StopReason says why a run ended. The empty reason means keep going.
type StopReason string

const (
	ReasonNone            StopReason = ""
	ReasonGenerationLimit StopReason = "generation limit"
	ReasonExtinct         StopReason = "extinction"
	ReasonStillLife       StopReason = "still life"
	ReasonOscillator      StopReason = "oscillation"
	ReasonCancelled       StopReason = "cancelled"
)

// Options control a run. Generations == 0 means no limit; with
// StopWhenStable unset such a run only ends on cancellation.
type Options struct {
	Generations    int
	StopWhenStable bool
	Delay          time.Duration
	Bounded        bool
	Parallel       bool
	Workers        int
}

// OptionsFromConfig maps the loaded config onto run options
func OptionsFromConfig(config utils.Config) Options {
	return Options{
		Generations:    config.Generations,
		StopWhenStable: config.StopWhenStable,
		Delay:          config.FrameRate,
		Bounded:        config.UseBoundedGrid,
		Parallel:       config.UseParallel,
		Workers:        config.Workers,
	}
}

// Result summarizes a finished run
type Result struct {
	Generations int
	Reason      StopReason
	Population  int
}

// Session is a single run over one grid. It is not safe for concurrent use
// except for SetDelay/Delay.
type Session struct {
	grid       *model.Grid
	opts       Options
	generation int
	history    []string
	stats      *utils.Stats
	lastStep   time.Time
	reason     StopReason
	delay      atomic.Int64
	logger     zerolog.Logger
}

// NewSession starts a run at generation 0
func NewSession(grid *model.Grid, opts Options) *Session {
	s := &Session{
		grid:    grid,
		opts:    opts,
		history: []string{grid.Hash()},
		stats:   utils.NewStats(),
		logger:  log.With().Str("component", "driver").Logger(),
	}
	s.lastStep = s.stats.StartTime
	s.delay.Store(int64(opts.Delay))
	return s
}

// Grid returns the simulated grid
func (s *Session) Grid() *model.Grid {
	return s.grid
}

// Generation returns the number of generations advanced so far
func (s *Session) Generation() int {
	return s.generation
}

// Stats returns the run statistics
func (s *Session) Stats() *utils.Stats {
	return s.stats
}

// SetDelay changes the pause between generations of a running loop
func (s *Session) SetDelay(d time.Duration) {
	s.delay.Store(int64(d))
}

// Delay returns the current pause between generations
func (s *Session) Delay() time.Duration {
	return time.Duration(s.delay.Load())
}

func (s *Session) limitReached() bool {
	return s.opts.Generations > 0 && s.generation >= s.opts.Generations
}

// Step advances one generation and reports whether the run should stop.
// Once the generation limit is reached it no longer advances.
func (s *Session) Step() StopReason {
	if s.limitReached() {
		s.reason = ReasonGenerationLimit
		return s.reason
	}

	switch {
	case s.opts.Bounded:
		s.grid.AdvanceBounded()
	case s.opts.Parallel:
		s.grid.AdvanceParallel(s.opts.Workers)
	default:
		s.grid.Advance()
	}
	s.generation++

	// Frame time, including rendering and pacing since the previous step
	now := time.Now()
	population := s.grid.CountLivingCells()
	s.stats.Update(s.generation, population, now.Sub(s.lastStep))
	s.lastStep = now

	hash := s.grid.Hash()
	reason := s.classify(hash, population)
	s.remember(hash)

	s.logger.Debug().
		Int("generation", s.generation).
		Int("population", population).
		Str("hash", hash).
		Msg("Generation advanced")

	if reason == ReasonNone && s.limitReached() {
		reason = ReasonGenerationLimit
	}
	s.reason = reason
	return reason
}

// Reason returns the stop reason of the latest step
func (s *Session) Reason() StopReason {
	return s.reason
}

// Status returns a one-line summary of the current generation
func (s *Session) Status() string {
	var (
		living  = s.grid.CountLivingCells()
		density = float64(living) / float64(s.grid.Width()*s.grid.Height()) * 100
		status  = "Active"
	)
	if s.reason != ReasonNone {
		status = string(s.reason)
	}

	line := fmt.Sprintf("Gen: %d | Living: %d | Density: %.1f%% | Status: %s",
		s.generation, living, density, status)
	if s.opts.Bounded {
		line += fmt.Sprintf(" | Bounding box: %d cells", s.grid.BoundingBoxSize())
	}
	return line
}

// classify checks the stability stop conditions against history
func (s *Session) classify(hash string, population int) StopReason {
	if !s.opts.StopWhenStable {
		return ReasonNone
	}
	if population == 0 {
		return ReasonExtinct
	}
	if s.history[len(s.history)-1] == hash {
		return ReasonStillLife
	}
	if slices.Contains(s.history, hash) {
		return ReasonOscillator
	}
	return ReasonNone
}

func (s *Session) remember(hash string) {
	s.history = append(s.history, hash)
	if len(s.history) > historySize {
		s.history = s.history[1:]
	}
}

func (s *Session) result(reason StopReason) Result {
	return Result{
		Generations: s.generation,
		Reason:      reason,
		Population:  s.grid.CountLivingCells(),
	}
}

// Run renders generation 0 and then steps and renders until a stop condition
// is met or ctx is cancelled, pausing Delay between generations.
func Run(ctx context.Context, s *Session, r model.Renderer) (Result, error) {
	if err := r.Render(s.grid); err != nil {
		return s.result(ReasonNone), errors.Wrap(err, "[Run] failed to render generation 0")
	}

	for {
		if ctx.Err() != nil {
			return s.finish(ReasonCancelled), nil
		}

		reason := s.Step()
		if err := r.Render(s.grid); err != nil {
			return s.result(reason), errors.Wrapf(err, "[Run] failed to render generation %d", s.generation)
		}
		if reason != ReasonNone {
			return s.finish(reason), nil
		}

		if d := s.Delay(); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return s.finish(ReasonCancelled), nil
			case <-timer.C:
			}
		}
	}
}

func (s *Session) finish(reason StopReason) Result {
	res := s.result(reason)
	s.logger.Info().
		Str("reason", string(reason)).
		Int("population", res.Population).
		Object("stats", s.stats).
		Msg("Run finished")
	return res
}
