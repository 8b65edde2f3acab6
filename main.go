package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sheikhrachel/go-gol-engine/driver"
	"github.com/sheikhrachel/go-gol-engine/utils"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (yaml, json or toml)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config)")
	flag.Parse()

	config, err := utils.LoadConfig(*configPath)
	if err != nil {
		utils.SetupLogging("info", "console")
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *logLevel != "" {
		config.LogLevel = *logLevel
	}

	utils.SetupLogging(config.LogLevel, config.LogFormat)
	log.Logger = log.With().Str("run_id", uuid.New().String()).Logger()

	session, err := initializeGame(config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize simulation")
	}
	displayGameInfo(config, session)

	if *configPath != "" {
		watchPacing(*configPath, session)
	}

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.Renderer == utils.RendererWindow {
		if err := runWindow(ctx, config, session); err != nil {
			log.Fatal().Err(err).Msg("Window closed with error")
		}
		return
	}

	result, err := driver.Run(ctx, session, newRenderer(config, session))
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation failed")
	}
	log.Info().
		Int("generations", result.Generations).
		Str("reason", string(result.Reason)).
		Int("population", result.Population).
		Msg("Simulation stopped")
}
