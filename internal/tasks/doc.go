// Package tasks implements long-running playback operations over a [services.Player].
//
// The core abstraction is [Watcher], which polls the player state and the playing track,
// persists the snapshots, and reports each poll as an [Update].
// Updates are sent without blocking so a slow consumer drops updates instead of stalling the poll loop.
package tasks
