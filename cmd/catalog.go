package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotbox/internal/formatter"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search looks up tracks matching the query argument.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	query := cmd.StringArg("query")
	limit := cmd.Int("limit")

	r.logger.Infof("searching spotify for %q with limit %v", query, limit)

	result, err := r.player.Search(ctx, query, limit)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}
	if len(result.Tracks) == 0 {
		return r.writePlain("No tracks found for %q\n", query)
	}
	formatter.SearchTable(r.output, result)
	return nil
}

// LibrarySave saves the track ID arguments to the user's library.
func (r *Runner) LibrarySave(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one track id", shared.ErrMissingArgument)
	}

	if err := r.player.SaveTracks(ctx, ids...); err != nil {
		return err
	}
	return r.writeOK("Saved %d track(s) to the library", len(ids))
}
