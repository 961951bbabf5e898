package models

import (
	"fmt"
	"unicode/utf8"
)

// Maximum string lengths, in bytes.
const (
	MaxNameLen         = 100
	MaxURILen          = 40
	MaxURLLen          = 70
	MaxDeviceIDLen     = 45
	MaxDeviceNameLen   = 80
	MaxDeviceTypeLen   = 30
	MaxErrorMessageLen = 128
	MaxAccessTokenLen  = 512
)

// Array capacities.
const (
	MaxArtists       = 5
	MaxImages        = 3
	MaxDevices       = 10
	MaxSearchResults = 5
)

// Truncate shortens s to at most max bytes without splitting a UTF-8 sequence.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// RepeatState is the player's repeat mode.
type RepeatState int

const (
	RepeatTrack RepeatState = iota
	RepeatContext
	RepeatOff
)

// ParseRepeatState maps the wire value to a [RepeatState].
//
// Only "off" and "context" are matched (case-sensitive); anything else is [RepeatTrack].
func ParseRepeatState(s string) RepeatState {
	switch s {
	case "off":
		return RepeatOff
	case "context":
		return RepeatContext
	default:
		return RepeatTrack
	}
}

// LookupRepeatState parses user input strictly, for CLI flags.
func LookupRepeatState(s string) (RepeatState, error) {
	switch s {
	case "off":
		return RepeatOff, nil
	case "context":
		return RepeatContext, nil
	case "track":
		return RepeatTrack, nil
	}
	return RepeatOff, fmt.Errorf("unknown repeat state %q (want track, context or off)", s)
}

func (r RepeatState) String() string {
	switch r {
	case RepeatOff:
		return "off"
	case RepeatContext:
		return "context"
	default:
		return "track"
	}
}

// Next cycles off -> context -> track -> off.
func (r RepeatState) Next() RepeatState {
	switch r {
	case RepeatOff:
		return RepeatContext
	case RepeatContext:
		return RepeatTrack
	default:
		return RepeatOff
	}
}

func (r RepeatState) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *RepeatState) UnmarshalText(b []byte) error {
	*r = ParseRepeatState(string(b))
	return nil
}

// Device is a Spotify Connect device.
type Device struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	IsActive         bool   `json:"is_active"`
	IsRestricted     bool   `json:"is_restricted"`
	IsPrivateSession bool   `json:"is_private_session"`
	VolumePercent    int    `json:"volume_percent"`
}

// NewDevice builds a Device with bounded strings and a clamped volume.
func NewDevice(id, name, kind string, volume int) Device {
	return Device{
		ID:            Truncate(id, MaxDeviceIDLen),
		Name:          Truncate(name, MaxDeviceNameLen),
		Type:          Truncate(kind, MaxDeviceTypeLen),
		VolumePercent: ClampVolume(volume),
	}
}

// ClampVolume limits v to 0..100.
func ClampVolume(v int) int {
	return min(max(v, 0), 100)
}

// Image is a single piece of album artwork.
type Image struct {
	Height int    `json:"height"`
	Width  int    `json:"width"`
	URL    string `json:"url"`
}

// Artist is a track artist.
type Artist struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// NewArtist builds an Artist with bounded strings.
func NewArtist(name, uri string) Artist {
	return Artist{Name: Truncate(name, MaxNameLen), URI: Truncate(uri, MaxURILen)}
}

// Track is a track and its album.
type Track struct {
	Name        string   `json:"name"`
	URI         string   `json:"uri"`
	AlbumName   string   `json:"album_name"`
	AlbumURI    string   `json:"album_uri"`
	Artists     []Artist `json:"artists"`
	AlbumImages []Image  `json:"album_images"`
	DurationMS  int64    `json:"duration_ms"`
}

// ArtistNames returns the artist names in order.
func (t Track) ArtistNames() []string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return names
}

// PlayerState is a full snapshot of the remote player.
type PlayerState struct {
	Device       Device      `json:"device"`
	ProgressMS   int64       `json:"progress_ms"`
	IsPlaying    bool        `json:"is_playing"`
	RepeatState  RepeatState `json:"repeat_state"`
	ShuffleState bool        `json:"shuffle_state"`
}

// CurrentlyPlaying is a snapshot of the playing track.
type CurrentlyPlaying struct {
	Artists     []Artist `json:"artists"`
	AlbumName   string   `json:"album_name"`
	AlbumURI    string   `json:"album_uri"`
	TrackName   string   `json:"track_name"`
	TrackURI    string   `json:"track_uri"`
	AlbumImages []Image  `json:"album_images"`
	IsPlaying   bool     `json:"is_playing"`
	ProgressMS  int64    `json:"progress_ms"`
	DurationMS  int64    `json:"duration_ms"`
}

// Track returns the playing item as a [Track].
func (c CurrentlyPlaying) Track() Track {
	return Track{
		Name:        c.TrackName,
		URI:         c.TrackURI,
		AlbumName:   c.AlbumName,
		AlbumURI:    c.AlbumURI,
		Artists:     c.Artists,
		AlbumImages: c.AlbumImages,
		DurationMS:  c.DurationMS,
	}
}

// SearchResult holds at most [MaxSearchResults] tracks.
type SearchResult struct {
	Query  string  `json:"query"`
	Tracks []Track `json:"tracks"`
}
