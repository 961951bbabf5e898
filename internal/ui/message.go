package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgWatchUpdate MsgKind = iota
	MsgWatchStopped
	MsgCommandDone
	MsgDevicesFetched
)

type commandResult struct {
	action string
	err    error
	// apply updates the displayed state once the command succeeds, ahead of the next poll.
	apply func(*models.PlayerState)
}

type devicesResult struct {
	devices []models.Device
	err     error
}

// watchUpdateMsg is the constructor for [MsgWatchUpdate]
func watchUpdateMsg(update tasks.Update) Msg {
	return Msg{kind: MsgWatchUpdate, data: update}
}

// watchStoppedMsg is the constructor for [MsgWatchStopped]
func watchStoppedMsg() Msg {
	return Msg{kind: MsgWatchStopped}
}

// commandDoneMsg is the constructor for [MsgCommandDone]
func commandDoneMsg(action string, err error, apply func(*models.PlayerState)) Msg {
	return Msg{kind: MsgCommandDone, data: commandResult{action: action, err: err, apply: apply}}
}

// devicesFetchedMsg is the constructor for [MsgDevicesFetched]
func devicesFetchedMsg(devices []models.Device, err error) Msg {
	return Msg{kind: MsgDevicesFetched, data: devicesResult{devices: devices, err: err}}
}
