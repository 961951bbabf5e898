package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotbox/internal/formatter"
	"github.com/desertthunder/spotbox/internal/repositories"
	"github.com/desertthunder/spotbox/internal/services"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/desertthunder/spotbox/internal/tasks"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

// Authenticator is the token side of the player used by the auth commands.
type Authenticator interface {
	Refresh(ctx context.Context) error
	TokenStatus() (fresh bool, expiresAt time.Time)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	player     services.Player
	auth       Authenticator
	snapshots  *repositories.SnapshotRepository
	refreshLog *repositories.RefreshLogRepository
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Player, Auth, Snapshots and RefreshLog may be nil; commands needing them report [shared.ErrServiceUnavailable].
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Player     services.Player
	Auth       Authenticator
	Snapshots  *repositories.SnapshotRepository
	RefreshLog *repositories.RefreshLogRepository
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		player:     opts.Player,
		auth:       opts.Auth,
		snapshots:  opts.Snapshots,
		refreshLog: opts.RefreshLog,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playerCommand, searchCommand, libraryCommand, snapshotCommand, watchCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) requirePlayer() error {
	if r.player == nil {
		return fmt.Errorf("%w: Spotify player not initialized (check credentials)", shared.ErrServiceUnavailable)
	}
	return nil
}

// newWatcher builds a watcher over the player, persisting snapshots when a database is available.
func (r *Runner) newWatcher() *tasks.Watcher {
	opts := tasks.WatcherOpts{RateLimit: r.config.Watch.RateLimit, Logger: shared.WithLogger(r.logger, "component", "watcher")}
	if r.snapshots != nil {
		opts.Store = r.snapshots
	}
	return tasks.NewWatcher(r.player, opts)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := formatter.ToJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeOK prints a green check mark status line.
func (r *Runner) writeOK(format string, args ...any) error {
	return r.writePlain("%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, args...))
}

// writeFail prints a red cross status line.
func (r *Runner) writeFail(format string, args ...any) error {
	return r.writePlain("%s %s\n", color.RedString("✗"), fmt.Sprintf(format, args...))
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", color.New(color.Bold).Sprint(title))
	r.writePlain("═══════════════════════════════════════\n")
}
