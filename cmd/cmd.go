// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func deviceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "device",
		Aliases: []string{"d"},
		Usage:   "Target device ID (defaults to the active device)",
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a config.toml template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent database migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// authCommand handles access token operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify access token",
		Commands: []*cli.Command{
			{
				Name:   "refresh",
				Usage:  "Exchange the refresh token for a new access token",
				Action: r.AuthRefresh,
			},
			{
				Name:  "status",
				Usage: "Show token freshness and recent refresh attempts",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "history",
						Usage: "Number of recent refresh attempts to show",
						Value: 5,
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// playerCommand handles playback state and control
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "player",
		Aliases: []string{"p"},
		Usage:   "Playback state and control",
		Commands: []*cli.Command{
			{
				Name:   "state",
				Usage:  "Show the player state",
				Flags:  outputFlags(),
				Action: r.PlayerState,
			},
			{
				Name:  "current",
				Usage: "Show the currently playing track",
				Flags: append(outputFlags(), &cli.BoolFlag{
					Name:  "markdown",
					Usage: "Output Markdown",
				}),
				Action: r.PlayerCurrent,
			},
			{
				Name:   "devices",
				Usage:  "List Spotify Connect devices",
				Flags:  outputFlags(),
				Action: r.PlayerDevices,
			},
			{
				Name:      "play",
				Usage:     "Play an album or playlist context",
				Arguments: []cli.Argument{&cli.StringArg{Name: "uri"}},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "offset",
						Usage: "Track position within the context",
					},
					&cli.IntFlag{
						Name:  "position",
						Usage: "Start position in milliseconds",
					},
					deviceFlag(),
				},
				Action: r.PlayerPlay,
			},
			{
				Name:   "resume",
				Usage:  "Resume playback",
				Flags:  []cli.Flag{deviceFlag()},
				Action: r.PlayerResume,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Action: r.PlayerPause,
			},
			{
				Name:      "volume",
				Usage:     "Set the volume (0-100)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "percent"}},
				Flags:     []cli.Flag{deviceFlag()},
				Action:    r.PlayerVolume,
			},
			{
				Name:      "shuffle",
				Usage:     "Turn shuffle on or off",
				Arguments: []cli.Argument{&cli.StringArg{Name: "state"}},
				Flags:     []cli.Flag{deviceFlag()},
				Action:    r.PlayerShuffle,
			},
			{
				Name:      "repeat",
				Usage:     "Set repeat mode (off, context, track)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "mode"}},
				Flags:     []cli.Flag{deviceFlag()},
				Action:    r.PlayerRepeat,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next track",
				Action: r.PlayerNext,
			},
			{
				Name:   "previous",
				Usage:  "Skip to the previous track",
				Action: r.PlayerPrevious,
			},
			{
				Name:      "seek",
				Usage:     "Seek to a position in milliseconds",
				Arguments: []cli.Argument{&cli.StringArg{Name: "position"}},
				Action:    r.PlayerSeek,
			},
		},
	}
}

// searchCommand searches the catalog for tracks
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search Spotify for tracks",
		Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
		Flags: append(outputFlags(), &cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Maximum number of results (1-5)",
			Value:   5,
		}),
		Action: r.Search,
	}
}

// libraryCommand handles saved tracks
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "library",
		Usage: "Saved tracks",
		Commands: []*cli.Command{
			{
				Name:      "save",
				Usage:     "Save track IDs to the library",
				ArgsUsage: "<id> [id...]",
				Action:    r.LibrarySave,
			},
		},
	}
}

// snapshotCommand handles persisted player snapshots
func snapshotCommand(r *Runner) *cli.Command {
	kindFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "kind",
			Aliases: []string{"k"},
			Usage:   "Snapshot kind (player_state, currently_playing)",
			Value:   "currently_playing",
		}
	}

	return &cli.Command{
		Name:  "snapshot",
		Usage: "Inspect stored player snapshots",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the current or last snapshot",
				Flags: append(outputFlags(), kindFlag(), &cli.BoolFlag{
					Name:  "last",
					Usage: "Show the previous snapshot instead of the current one",
				}),
				Action: r.SnapshotShow,
			},
			{
				Name:   "clear",
				Usage:  "Delete stored snapshots of a kind",
				Flags:  []cli.Flag{kindFlag()},
				Action: r.SnapshotClear,
			},
		},
	}
}

// watchCommand polls the player and prints each update
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Poll the player and print changes",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Polling interval (defaults to [watch] interval_ms)",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Stop after this many polls (0 runs until interrupted)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output one JSON object per poll",
			},
		},
		Action: r.Watch,
	}
}

// tuiCommand returns the top-level TUI command for the now-playing view.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive now-playing view",
		Action:  r.TUI,
	}
}
