package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotbox/internal/formatter"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) requireAuth() error {
	if r.auth == nil {
		return fmt.Errorf("%w: credentials not configured", shared.ErrServiceUnavailable)
	}
	return nil
}

// AuthRefresh forces a token refresh.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	r.logger.Info("refreshing access token")
	if err := r.auth.Refresh(ctx); err != nil {
		r.writeFail("Refresh failed")
		return err
	}

	_, expiresAt := r.auth.TokenStatus()
	return r.writeOK("Access token refreshed, expires %s (in %s)",
		expiresAt.Format(time.Kitchen), time.Until(expiresAt).Round(time.Second))
}

// AuthStatus reports token freshness and the recent refresh history.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}

	r.writePlainHeader("Spotify access token")
	fresh, expiresAt := r.auth.TokenStatus()
	switch {
	case fresh:
		r.writeOK("Fresh until %s", expiresAt.Format(time.RFC3339))
	case expiresAt.IsZero():
		r.writeFail("No access token held (refreshed on first use)")
	default:
		r.writeFail("Expired at %s", expiresAt.Format(time.RFC3339))
	}

	limit := cmd.Int("history")
	if r.refreshLog == nil || limit <= 0 {
		return nil
	}

	attempts, err := r.refreshLog.Recent(limit)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		return r.writePlainln("No refresh attempts recorded")
	}

	r.writePlainln("Recent refresh attempts:")
	formatter.RefreshLogTable(r.output, attempts)
	return nil
}
