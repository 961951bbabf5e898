// Package mapper turns buffered Spotify Web API bodies into bounded [models] records.
//
// Each decoder is all-or-nothing: it returns a fully populated record, nil for the
// documented "nothing there" responses, or an error. A body carrying an error object is
// reported as an [*APIError] and never field-decoded.
package mapper

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/desertthunder/spotbox/internal/jsonx"
	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/shared"
)

func isSuccess(status int) bool { return status >= 200 && status < 300 }

func isEmpty(status int, body []byte) bool {
	return status == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0
}

// parse decodes body and surfaces any error object. Non-2xx bodies that are not JSON become a [shared.StatusError].
func parse(status int, body []byte) (jsonx.Node, error) {
	root, err := jsonx.Parse(body)
	if err != nil {
		if !isSuccess(status) {
			return jsonx.Node{}, &shared.StatusError{Status: status}
		}
		return jsonx.Node{}, err
	}
	if err := checkError(root, status); err != nil {
		return jsonx.Node{}, err
	}
	if !isSuccess(status) {
		return jsonx.Node{}, &shared.StatusError{Status: status}
	}
	if !root.IsObject() {
		return jsonx.Node{}, fmt.Errorf("%w: expected an object", shared.ErrInvalidJSON)
	}
	return root, nil
}

func checkError(root jsonx.Node, status int) error {
	errNode := root.Get("error")
	if !errNode.Exists() || errNode.IsNull() {
		return nil
	}
	msg, _ := errNode.Get("message").String()
	if msg == "" {
		msg, _ = errNode.String()
	}
	return newAPIError(msg, status)
}

// CheckStatus validates the response of a write operation, which needs no body.
//
// A 2xx with an empty or non-error body succeeds. An error object becomes an [*APIError];
// any other non-2xx becomes a [shared.StatusError].
func CheckStatus(status int, body []byte) error {
	if len(bytes.TrimSpace(body)) > 0 {
		if root, err := jsonx.Parse(body); err == nil {
			if err := checkError(root, status); err != nil {
				return err
			}
		}
	}
	if !isSuccess(status) {
		return &shared.StatusError{Status: status}
	}
	return nil
}

// DecodePlayerState maps GET /v1/me/player.
//
// A 204, an empty body or "device": null means no active device and yields (nil, nil).
func DecodePlayerState(status int, body []byte) (*models.PlayerState, error) {
	if isEmpty(status, body) && isSuccess(status) {
		return nil, nil
	}
	root, err := parse(status, body)
	if err != nil {
		return nil, err
	}

	device := root.Get("device")
	if device.IsNull() {
		return nil, nil
	}

	d := &decoder{}
	state := models.PlayerState{
		Device:       d.device(device, "device"),
		ProgressMS:   d.integer(root, "", "progress_ms"),
		IsPlaying:    d.boolean(root, "", "is_playing"),
		ShuffleState: d.boolean(root, "", "shuffle_state"),
		RepeatState:  models.ParseRepeatState(d.text(root, "", "repeat_state", 16)),
	}
	if d.err != nil {
		return nil, d.err
	}
	return &state, nil
}

// DecodeCurrentlyPlaying maps GET /v1/me/player/currently-playing.
//
// A 204, an empty body or "item": null means nothing is playing and yields (nil, nil).
func DecodeCurrentlyPlaying(status int, body []byte) (*models.CurrentlyPlaying, error) {
	if isEmpty(status, body) && isSuccess(status) {
		return nil, nil
	}
	root, err := parse(status, body)
	if err != nil {
		return nil, err
	}

	item := root.Get("item")
	if item.IsNull() {
		return nil, nil
	}

	d := &decoder{}
	isPlaying := d.boolean(root, "", "is_playing")
	progress := d.integer(root, "", "progress_ms")
	track := d.track(item, "item")
	if d.err != nil {
		return nil, d.err
	}

	return &models.CurrentlyPlaying{
		Artists:     track.Artists,
		AlbumName:   track.AlbumName,
		AlbumURI:    track.AlbumURI,
		TrackName:   track.Name,
		TrackURI:    track.URI,
		AlbumImages: track.AlbumImages,
		IsPlaying:   isPlaying,
		ProgressMS:  progress,
		DurationMS:  track.DurationMS,
	}, nil
}

// DecodeDevices maps GET /v1/me/player/devices, keeping at most [models.MaxDevices].
func DecodeDevices(status int, body []byte) ([]models.Device, error) {
	root, err := parse(status, body)
	if err != nil {
		return nil, err
	}

	d := &decoder{}
	list := d.array(root, "", "devices")
	n := min(list.ArraySize(), models.MaxDevices)
	devices := make([]models.Device, 0, n)
	for i := range n {
		devices = append(devices, d.device(list.ArrayItem(i), index("devices", i)))
	}
	if d.err != nil {
		return nil, d.err
	}
	return devices, nil
}

// DecodeSearch maps GET /v1/search?type=track, keeping at most [models.MaxSearchResults].
func DecodeSearch(status int, body []byte) (*models.SearchResult, error) {
	root, err := parse(status, body)
	if err != nil {
		return nil, err
	}

	d := &decoder{}
	tracks := d.object(root, "", "tracks")
	items := d.array(tracks, "tracks", "items")
	n := min(items.ArraySize(), models.MaxSearchResults)
	result := &models.SearchResult{Tracks: make([]models.Track, 0, n)}
	for i := range n {
		result.Tracks = append(result.Tracks, d.track(items.ArrayItem(i), index("tracks.items", i)))
	}
	if d.err != nil {
		return nil, d.err
	}
	return result, nil
}
