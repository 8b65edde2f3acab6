package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Stats tracks throughput and population over a run
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	PeakPopulation       int
	TotalGenerations     int
	StartTime            time.Time
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Update records one generation. duration is the time the generation took.
func (s *Stats) Update(generation int, population int, duration time.Duration) {
	s.TotalGenerations = generation
	if duration > 0 {
		s.GenerationsPerSecond = 1.0 / duration.Seconds()
	}
	s.PeakPopulation = max(s.PeakPopulation, population)

	// Simple moving average for population
	if s.AveragePopulation == 0 {
		s.AveragePopulation = float64(population)
	} else {
		s.AveragePopulation = (s.AveragePopulation * 0.9) + (float64(population) * 0.1)
	}
}

// MarshalZerologObject lets a Stats be logged with Object("stats", s)
func (s *Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("generations", s.TotalGenerations).
		Float64("gen_per_sec", s.GenerationsPerSecond).
		Float64("avg_population", s.AveragePopulation).
		Int("peak_population", s.PeakPopulation).
		Dur("runtime", time.Since(s.StartTime))
}
