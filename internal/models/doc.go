// Package models defines the bounded playback records returned by the Spotify Web API client.
//
// Every record has a fixed shape:
//   - strings are truncated to a declared maximum length on a rune boundary ([Truncate])
//   - nested arrays never exceed a declared capacity ([MaxArtists], [MaxImages], [MaxDevices], [MaxSearchResults])
//
// Records are snapshots. A decoder either returns a fully populated value or an error, never a partially filled one.
//
// Types:
//   - [Device] : a Spotify Connect device
//   - [Image] : album artwork
//   - [Artist] : a track artist
//   - [Track] : a track with its album, as returned by search
//   - [PlayerState] : the player snapshot from GET /v1/me/player
//   - [CurrentlyPlaying] : the track snapshot from GET /v1/me/player/currently-playing
//   - [SearchResult] : up to [MaxSearchResults] tracks
//   - [RepeatState] : the tri-state repeat mode
package models
