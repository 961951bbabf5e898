package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotbox/internal/formatter"
	"github.com/desertthunder/spotbox/internal/repositories"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireSnapshots() error {
	if r.snapshots == nil {
		return fmt.Errorf("%w: database not available (run 'spotbox setup database')", shared.ErrServiceUnavailable)
	}
	return nil
}

// SnapshotShow prints the current or last stored snapshot of a kind.
func (r *Runner) SnapshotShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSnapshots(); err != nil {
		return err
	}

	kind, err := repositories.ParseKind(cmd.String("kind"))
	if err != nil {
		return err
	}
	slot := repositories.SlotCurrent
	if cmd.Bool("last") {
		slot = repositories.SlotLast
	}

	snapshot, err := r.snapshots.Get(kind, slot)
	if err != nil {
		return fmt.Errorf("no %s %s snapshot: %w", slot, kind, err)
	}

	if !cmd.Bool("json") {
		formatter.SnapshotTable(r.output, snapshot)
		return nil
	}

	switch kind {
	case repositories.KindPlayerState:
		state, _, err := r.snapshots.PlayerState(slot)
		if err != nil {
			return err
		}
		return r.writeJSON(state, cmd.Bool("pretty"))
	default:
		current, _, err := r.snapshots.CurrentlyPlaying(slot)
		if err != nil {
			return err
		}
		return r.writeJSON(current, cmd.Bool("pretty"))
	}
}

// SnapshotClear deletes the stored snapshots of a kind.
func (r *Runner) SnapshotClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSnapshots(); err != nil {
		return err
	}

	kind, err := repositories.ParseKind(cmd.String("kind"))
	if err != nil {
		return err
	}

	if err := r.snapshots.Clear(kind); err != nil {
		return err
	}
	return r.writeOK("Cleared %s snapshots", kind)
}
