package main

import (
	"context"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog/log"

	"github.com/sheikhrachel/go-gol-engine/driver"
	"github.com/sheikhrachel/go-gol-engine/model"
	"github.com/sheikhrachel/go-gol-engine/seed"
	"github.com/sheikhrachel/go-gol-engine/ui"
	"github.com/sheikhrachel/go-gol-engine/utils"
)

// initializeGame builds the starting grid and a session around it
func initializeGame(config utils.Config) (*driver.Session, error) {
	cells, err := seed.FromConfig(config)
	if err != nil {
		return nil, err
	}
	grid, err := model.NewGridFromSeed(cells)
	if err != nil {
		return nil, err
	}
	return driver.NewSession(grid, driver.OptionsFromConfig(config)), nil
}

// displayGameInfo logs the initial game information
func displayGameInfo(config utils.Config, session *driver.Session) {
	grid := session.Grid()
	log.Info().
		Int("width", grid.Width()).
		Int("height", grid.Height()).
		Int("living", grid.CountLivingCells()).
		Int("max_generations", config.Generations).
		Bool("stop_when_stable", config.StopWhenStable).
		Bool("bounded", config.UseBoundedGrid).
		Bool("parallel", config.UseParallel).
		Str("renderer", config.Renderer).
		Msg("Starting simulation")
}

func newRenderer(config utils.Config, session *driver.Session) model.Renderer {
	if config.Renderer == utils.RendererNone {
		return model.NopRenderer{}
	}
	r := model.NewTerminalRenderer(os.Stdout, config.ClearScreen)
	if config.ShowStatus {
		r.WithStatus(session.Status)
	}
	return r
}

// watchPacing applies frame_rate edits to the running session
func watchPacing(path string, session *driver.Session) {
	_, err := utils.WatchConfig(path,
		func(config utils.Config) {
			if config.FrameRate != session.Delay() {
				log.Info().Dur("frame_rate", config.FrameRate).Msg("Frame rate reloaded")
				session.SetDelay(config.FrameRate)
			}
		},
		func(err error) {
			log.Warn().Err(err).Msg("Ignoring invalid config reload")
		},
	)
	if err != nil {
		log.Warn().Err(err).Msg("Config hot reload disabled")
	}
}

// runWindow shows the session in a window until it is closed or ctx is done
func runWindow(ctx context.Context, config utils.Config, session *driver.Session) error {
	window := ui.NewWindow(ctx, session, config.Window.CellSize, config.Window.TicksPerGeneration)

	ebiten.SetWindowSize(window.Size())
	ebiten.SetWindowTitle("Game of Life")
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(window); err != nil {
		return err
	}
	log.Info().
		Int("generations", session.Generation()).
		Str("reason", string(window.Reason())).
		Object("stats", session.Stats()).
		Msg("Simulation stopped")
	return nil
}
