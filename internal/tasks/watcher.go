package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/services"
	"github.com/desertthunder/spotbox/internal/shared"
)

// SnapshotStore persists polled records. [repositories.SnapshotRepository] implements it.
type SnapshotStore interface {
	SavePlayerState(state *models.PlayerState, at time.Time) error
	SaveCurrentlyPlaying(cur *models.CurrentlyPlaying, at time.Time) error
}

// WatcherOpts configures a [Watcher]. Nil or zero values use defaults.
type WatcherOpts struct {
	Store     SnapshotStore
	RateLimit float64 // requests per second across both endpoints (default: 2)
	Now       func() time.Time
	Logger    *log.Logger
}

// Watcher polls a player and persists what it sees.
type Watcher struct {
	player  services.Player
	store   SnapshotStore
	limiter *rate.Limiter
	now     func() time.Time
	logger  *log.Logger
	polls   int
}

func NewWatcher(player services.Player, opts WatcherOpts) *Watcher {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	return &Watcher{
		player:  player,
		store:   opts.Store,
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		now:     opts.Now,
		logger:  opts.Logger,
	}
}

// sendUpdate sends an update through the channel without blocking.
func sendUpdate(updates chan<- Update, u Update) {
	if updates == nil {
		return
	}
	select {
	case updates <- u:
	default:
	}
}

// Poll fetches the player state and the playing track once.
//
// Player errors are not retried here; they are returned inside the update.
func (w *Watcher) Poll(ctx context.Context) Update {
	if w.player == nil {
		return Update{Err: fmt.Errorf("%w: player not initialized", shared.ErrServiceUnavailable)}
	}

	w.polls++
	u := Update{Poll: w.polls, Phase: FetchPlayer}

	if err := w.limiter.Wait(ctx); err != nil {
		u.Err = err
		return u
	}
	state, stateErr := w.player.PlayerState(ctx)

	u.Phase = FetchCurrent
	if err := w.limiter.Wait(ctx); err != nil {
		u.Err = errors.Join(stateErr, err)
		return u
	}
	current, currentErr := w.player.CurrentlyPlaying(ctx)

	u.CapturedAt = w.now()
	u.State, u.Current = state, current
	errs := []error{stateErr, currentErr}

	if w.store != nil {
		u.Phase = Persist
		if stateErr == nil {
			errs = append(errs, w.store.SavePlayerState(state, u.CapturedAt))
		}
		if currentErr == nil {
			errs = append(errs, w.store.SaveCurrentlyPlaying(current, u.CapturedAt))
		}
	}

	u.Phase = Done
	u.Err = errors.Join(errs...)
	if u.Err != nil {
		w.logger.Warn("poll failed", "poll", u.Poll, "error", u.Err)
	} else {
		w.logger.Debug("poll complete", "poll", u.Poll, "active", state != nil, "playing", current != nil)
	}
	return u
}

// Run polls every interval until ctx ends or, when count is positive, count polls have been made.
//
// The first poll happens immediately. Run returns nil after count polls and ctx.Err() on cancellation.
func (w *Watcher) Run(ctx context.Context, interval time.Duration, count int, updates chan<- Update) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", shared.ErrInvalidArgument)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		u := w.Poll(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sendUpdate(updates, u)

		if count > 0 && n >= count {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
