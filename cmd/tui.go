package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/desertthunder/spotbox/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/spotbox-tui.log"

// TUI launches the interactive now-playing view.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logFile, err := shared.RedirectLogger(r.logger, tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := ui.NewModel(ctx, r.player, r.newWatcher(), r.config.Watch.Interval())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
