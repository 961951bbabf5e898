// package services implements the Spotify Web API playback client
package services

import (
	"context"

	"github.com/desertthunder/spotbox/internal/models"
)

// Player is the playback control surface used by the CLI, watcher and TUI.
//
// Read operations return (nil, nil) when Spotify reports no active device or nothing playing.
type Player interface {
	// EnsureFresh refreshes the access token when it is stale.
	EnsureFresh(ctx context.Context) error

	PlayerState(ctx context.Context) (*models.PlayerState, error)
	CurrentlyPlaying(ctx context.Context) (*models.CurrentlyPlaying, error)
	Devices(ctx context.Context) ([]models.Device, error)

	// Play starts contextURI at track offset and positionMS. An empty deviceID targets the active device.
	Play(ctx context.Context, contextURI string, offset int, positionMS int64, deviceID string) error
	// Resume continues whatever was paused.
	Resume(ctx context.Context, deviceID string) error
	Pause(ctx context.Context) error
	SetVolume(ctx context.Context, percent int, deviceID string) error
	SetShuffle(ctx context.Context, on bool, deviceID string) error
	SetRepeat(ctx context.Context, mode models.RepeatState, deviceID string) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(ctx context.Context, positionMS int64) error

	Search(ctx context.Context, query string, limit int) (*models.SearchResult, error)
	SaveTracks(ctx context.Context, ids ...string) error
}
