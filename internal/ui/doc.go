// Package ui implements the now-playing terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [NowPlayingView] : The playing track, progress, device and playback modes
//  2. [DevicesView] : Pick the device that volume, shuffle, repeat and resume commands target
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Player state flows in through a channel fed by a [tasks.Watcher]; playback commands run as [tea.Cmd]s so a slow
// request never blocks rendering.
//
// Keys: space play/pause, n/p next/previous, +/- volume, s shuffle, r repeat, d devices, q quit.
package ui
