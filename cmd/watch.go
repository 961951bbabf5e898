package main

import (
	"context"
	"errors"
	"time"

	"github.com/desertthunder/spotbox/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Watch polls the player and prints one line (or JSON object) per poll.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	interval := cmd.Duration("interval")
	if interval <= 0 {
		interval = r.config.Watch.Interval()
	}
	count := cmd.Int("count")
	asJSON := cmd.Bool("json")

	r.logger.Info("watching player", "interval", interval, "count", count, "persist", r.snapshots != nil)

	w := r.newWatcher()
	updates := make(chan tasks.Update, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, interval, count, updates)
		close(updates)
	}()

	for u := range updates {
		if asJSON {
			if err := r.writeJSON(watchRecord(u), false); err != nil {
				return err
			}
			continue
		}
		if u.Err != nil {
			r.writeFail("%s", u.Message())
		} else {
			r.writePlain("%s\n", u.Message())
		}
	}

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type watchLine struct {
	Poll       int    `json:"poll"`
	CapturedAt string `json:"captured_at,omitempty"`
	State      any    `json:"player_state"`
	Current    any    `json:"currently_playing"`
	Error      string `json:"error,omitempty"`
}

func watchRecord(u tasks.Update) watchLine {
	line := watchLine{Poll: u.Poll, State: u.State, Current: u.Current}
	if !u.CapturedAt.IsZero() {
		line.CapturedAt = u.CapturedAt.Format(time.RFC3339Nano)
	}
	if u.Err != nil {
		line.Error = u.Err.Error()
	}
	return line
}
