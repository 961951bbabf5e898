package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotbox/internal/repositories"
	"github.com/desertthunder/spotbox/internal/services"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	defaultConfigPath = "config.toml"
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "SPOTBOX_CONFIG"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := run(logger, os.Args); err != nil {
		if errors.Is(err, shared.ErrServiceUnavailable) {
			logger.Error("unavailable", "error", err)
			logger.Info("run 'spotbox setup config' and set your Spotify credentials")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// run wires the application and executes args. Resources are released before it returns.
func run(logger *log.Logger, args []string) error {
	shared.LoadEnv()

	configPath := defaultConfigPath
	if v := os.Getenv(EnvConfigPath); v != "" {
		configPath = v
	}

	config := shared.DefaultConfig()
	if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
		config = loadedConfig
	} else if !errors.Is(err, shared.ErrMissingConfig) {
		logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
	}
	config.ApplyEnv()
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	opts, db := buildRunnerOpts(config, logger)
	opts.ConfigPath = configPath
	if db != nil {
		defer db.Close()
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "spotbox",
		Usage:    "Control Spotify playback from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, args)
}

// buildRunnerOpts opens the database and, when credentials validate, the Spotify player.
//
// Failures leave the corresponding dependency nil so setup commands still run.
func buildRunnerOpts(config *shared.Config, logger *log.Logger) (RunnerOpts, *sql.DB) {
	opts := RunnerOpts{Config: config, Logger: logger}
	playerOpts := services.PlayerOpts{Logger: logger}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		logger.Warn("database unavailable, snapshots disabled", "path", config.Database.Path, "error", err)
		db = nil
	} else {
		opts.Snapshots = repositories.NewSnapshotRepository(db)
		opts.RefreshLog = repositories.NewRefreshLogRepository(db, repositories.DefaultRefreshLogSize)
		playerOpts.Recorder = opts.RefreshLog
	}

	if err := config.Validate(); err != nil {
		logger.Debug("spotify player disabled", "error", err)
		return opts, db
	}

	player, err := services.NewSpotifyPlayer(config, playerOpts)
	if err != nil {
		logger.Warn("failed to create spotify player", "error", err)
		return opts, db
	}
	opts.Player = player
	opts.Auth = player
	return opts, db
}
