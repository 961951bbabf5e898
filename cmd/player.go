package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/spotbox/internal/formatter"
	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlayerState prints the player state.
func (r *Runner) PlayerState(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	state, err := r.player.PlayerState(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(state, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", formatter.PlayerStateText(state))
}

// PlayerCurrent prints the currently playing track.
func (r *Runner) PlayerCurrent(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	current, err := r.player.CurrentlyPlaying(ctx)
	if err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(current, cmd.Bool("pretty"))
	case cmd.Bool("markdown"):
		return r.writePlain("%s", formatter.CurrentlyPlayingMarkdown(current))
	default:
		return r.writePlain("%s", formatter.CurrentlyPlayingText(current))
	}
}

// PlayerDevices lists the available devices.
func (r *Runner) PlayerDevices(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	devices, err := r.player.Devices(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(devices, cmd.Bool("pretty"))
	}
	if len(devices) == 0 {
		return r.writePlain("No devices available\n")
	}
	formatter.DevicesTable(r.output, devices)
	return nil
}

// PlayerPlay starts a context at an optional offset and position.
func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	uri := cmd.StringArg("uri")
	offset := cmd.Int("offset")
	position := int64(cmd.Int("position"))

	r.logger.Info("starting playback", "context", uri, "offset", offset, "position_ms", position)
	if err := r.player.Play(ctx, uri, offset, position, cmd.String("device")); err != nil {
		return err
	}
	return r.writeOK("Playing %s", uri)
}

// PlayerResume resumes the paused context.
func (r *Runner) PlayerResume(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}
	if err := r.player.Resume(ctx, cmd.String("device")); err != nil {
		return err
	}
	return r.writeOK("Resumed")
}

// PlayerPause pauses playback.
func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}
	if err := r.player.Pause(ctx); err != nil {
		return err
	}
	return r.writeOK("Paused")
}

// PlayerVolume sets the volume percentage.
func (r *Runner) PlayerVolume(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	arg := cmd.StringArg("percent")
	if arg == "" {
		return fmt.Errorf("%w: volume percent", shared.ErrMissingArgument)
	}
	percent, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: volume %q is not a number", shared.ErrInvalidArgument, arg)
	}

	if err := r.player.SetVolume(ctx, percent, cmd.String("device")); err != nil {
		return err
	}
	return r.writeOK("Volume set to %d%%", percent)
}

// PlayerShuffle toggles shuffle.
func (r *Runner) PlayerShuffle(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	on, err := parseToggle(cmd.StringArg("state"))
	if err != nil {
		return err
	}

	if err := r.player.SetShuffle(ctx, on, cmd.String("device")); err != nil {
		return err
	}
	return r.writeOK("Shuffle %s", shared.OnOff(on))
}

// PlayerRepeat sets the repeat mode.
func (r *Runner) PlayerRepeat(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	mode, err := models.LookupRepeatState(cmd.StringArg("mode"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	if err := r.player.SetRepeat(ctx, mode, cmd.String("device")); err != nil {
		return err
	}
	return r.writeOK("Repeat %s", mode)
}

// PlayerNext skips to the next track.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}
	if err := r.player.Next(ctx); err != nil {
		return err
	}
	return r.writeOK("Skipped to next track")
}

// PlayerPrevious skips to the previous track.
func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}
	if err := r.player.Previous(ctx); err != nil {
		return err
	}
	return r.writeOK("Skipped to previous track")
}

// PlayerSeek seeks within the playing track.
func (r *Runner) PlayerSeek(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	arg := cmd.StringArg("position")
	if arg == "" {
		return fmt.Errorf("%w: position", shared.ErrMissingArgument)
	}
	position, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: position %q is not a number", shared.ErrInvalidArgument, arg)
	}

	if err := r.player.Seek(ctx, position); err != nil {
		return err
	}
	return r.writeOK("Seeked to %s", shared.FormatDuration(position))
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	case "":
		return false, fmt.Errorf("%w: on or off", shared.ErrMissingArgument)
	default:
		return false, fmt.Errorf("%w: %q is not on or off", shared.ErrInvalidArgument, s)
	}
}
