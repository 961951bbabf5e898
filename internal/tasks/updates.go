package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/spotbox/internal/models"
)

// Update is the outcome of one poll.
//
// State is nil when no device is active and Current is nil when nothing is playing. Err carries
// any fetch or persistence failure; the fields that did succeed are still populated.
type Update struct {
	Phase      Phase
	Poll       int
	State      *models.PlayerState
	Current    *models.CurrentlyPlaying
	CapturedAt time.Time
	Err        error
}

// Message renders a one-line summary for logs and status bars.
func (u Update) Message() string {
	switch {
	case u.Err != nil:
		return fmt.Sprintf("[%d] poll failed: %v", u.Poll, u.Err)
	case u.State == nil:
		return fmt.Sprintf("[%d] no active device", u.Poll)
	case u.Current == nil:
		return fmt.Sprintf("[%d] %s: nothing playing", u.Poll, u.State.Device.Name)
	default:
		verb := "paused"
		if u.Current.IsPlaying {
			verb = "playing"
		}
		return fmt.Sprintf("[%d] %s: %s %s", u.Poll, u.State.Device.Name, verb, u.Current.TrackName)
	}
}

// Operation phase enumeration
type Phase int

const (
	FetchPlayer Phase = iota
	FetchCurrent
	Persist
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchPlayer:
		return "fetch_player"
	case FetchCurrent:
		return "fetch_current"
	case Persist:
		return "persist"
	case Done:
		return "done"
	default:
		return ""
	}
}
