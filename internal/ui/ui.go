package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotbox/internal/formatter"
	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/services"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/desertthunder/spotbox/internal/tasks"
)

// volumeStep is the change applied by one +/- press.
const volumeStep = 5

// ViewState represents the current view in the TUI.
type ViewState int

const (
	NowPlayingView ViewState = iota
	DevicesView
)

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	view       ViewState
	player     services.Player
	watcher    *tasks.Watcher
	interval   time.Duration
	updates    chan tasks.Update
	last       tasks.Update
	deviceID   string
	deviceList list.Model
	status     string
	err        error
	width      int
	height     int
	help       help.Model
	keys       keyMap
}

// NewModel creates a new TUI model. The watcher may be nil, in which case updates must be fed in by the caller.
func NewModel(ctx context.Context, player services.Player, watcher *tasks.Watcher, interval time.Duration) *Model {
	if interval <= 0 {
		interval = time.Second
	}
	return &Model{
		ctx:      ctx,
		view:     NowPlayingView,
		player:   player,
		watcher:  watcher,
		interval: interval,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init starts the watcher loop.
func (m *Model) Init() tea.Cmd {
	if m.watcher == nil {
		return nil
	}

	updates := make(chan tasks.Update, 1)
	m.updates = updates
	go func() {
		defer close(updates)
		_ = m.watcher.Run(m.ctx, m.interval, 0, updates)
	}()
	return m.waitForUpdate()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.deviceList.Width() != 0 {
			m.deviceList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case NowPlayingView:
			return m.handleNowPlayingKeys(msg)
		case DevicesView:
			return m.handleDeviceKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgWatchUpdate:
		m.last = msg.data.(tasks.Update)
		m.err = m.last.Err
		return m, m.waitForUpdate()

	case MsgWatchStopped:
		m.updates = nil
		m.status = "watcher stopped"
		return m, nil

	case MsgCommandDone:
		res := msg.data.(commandResult)
		if res.err != nil {
			m.err = fmt.Errorf("%s: %w", res.action, res.err)
			return m, nil
		}
		m.err = nil
		m.status = res.action
		if res.apply != nil && m.last.State != nil {
			res.apply(m.last.State)
		}
		return m, nil

	case MsgDevicesFetched:
		res := msg.data.(devicesResult)
		if res.err != nil {
			m.err = fmt.Errorf("devices: %w", res.err)
			m.view = NowPlayingView
			return m, nil
		}
		m.deviceList = list.New(deviceItems(res.devices), list.NewDefaultDelegate(), 0, 0)
		m.deviceList.Title = "Spotify Connect Devices"
		m.deviceList.SetSize(max(m.width-4, 20), max(m.height-8, 10))
		m.view = DevicesView
		return m, nil
	}
	return m, nil
}

func (m *Model) handleNowPlayingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	state := m.last.State

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.playPause):
		if state != nil && state.IsPlaying {
			return m, m.run("paused", m.player.Pause, func(s *models.PlayerState) { s.IsPlaying = false })
		}
		return m, m.run("resumed", func(ctx context.Context) error {
			return m.player.Resume(ctx, m.deviceID)
		}, func(s *models.PlayerState) { s.IsPlaying = true })

	case key.Matches(msg, m.keys.next):
		return m, m.run("next track", m.player.Next, nil)

	case key.Matches(msg, m.keys.previous):
		return m, m.run("previous track", m.player.Previous, nil)

	case key.Matches(msg, m.keys.devices):
		return m, m.fetchDevices()
	}

	if state == nil {
		if key.Matches(msg, m.keys.volUp, m.keys.volDown, m.keys.shuffle, m.keys.repeat) {
			m.status = "no active device"
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.volUp):
		return m, m.setVolume(state.Device.VolumePercent + volumeStep)

	case key.Matches(msg, m.keys.volDown):
		return m, m.setVolume(state.Device.VolumePercent - volumeStep)

	case key.Matches(msg, m.keys.shuffle):
		on := !state.ShuffleState
		return m, m.run("shuffle "+shared.OnOff(on), func(ctx context.Context) error {
			return m.player.SetShuffle(ctx, on, m.deviceID)
		}, func(s *models.PlayerState) { s.ShuffleState = on })

	case key.Matches(msg, m.keys.repeat):
		mode := state.RepeatState.Next()
		return m, m.run("repeat "+mode.String(), func(ctx context.Context) error {
			return m.player.SetRepeat(ctx, mode, m.deviceID)
		}, func(s *models.PlayerState) { s.RepeatState = mode })
	}
	return m, nil
}

func (m *Model) handleDeviceKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = NowPlayingView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.deviceList.SelectedItem().(deviceItem); ok {
			m.deviceID = item.device.ID
			m.status = "targeting " + item.device.Name
		}
		m.view = NowPlayingView
		return m, nil
	}

	var cmd tea.Cmd
	m.deviceList, cmd = m.deviceList.Update(msg)
	return m, cmd
}

func (m *Model) setVolume(percent int) tea.Cmd {
	percent = models.ClampVolume(percent)
	return m.run(fmt.Sprintf("volume %d%%", percent), func(ctx context.Context) error {
		return m.player.SetVolume(ctx, percent, m.deviceID)
	}, func(s *models.PlayerState) { s.Device.VolumePercent = percent })
}

// run wraps a player call as a command reporting [MsgCommandDone].
func (m *Model) run(action string, call func(context.Context) error, apply func(*models.PlayerState)) tea.Cmd {
	return func() tea.Msg {
		return commandDoneMsg(action, call(m.ctx), apply)
	}
}

func (m *Model) fetchDevices() tea.Cmd {
	return func() tea.Msg {
		devices, err := m.player.Devices(m.ctx)
		return devicesFetchedMsg(devices, err)
	}
}

func (m *Model) waitForUpdate() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		if updates == nil {
			return watchStoppedMsg()
		}
		update, ok := <-updates
		if !ok {
			return watchStoppedMsg()
		}
		return watchUpdateMsg(update)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case DevicesView:
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", m.deviceList.View(), helpView)
	default:
		return m.renderNowPlaying()
	}
}

func (m *Model) renderNowPlaying() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("spotbox"))
	b.WriteString("\n")

	state, cur := m.last.State, m.last.Current
	switch {
	case m.last.Poll == 0 && m.err == nil:
		b.WriteString(styles.muted.Render("Waiting for player..."))
	case state == nil:
		b.WriteString(styles.warn.Render("No active device"))
	default:
		b.WriteString(renderTrack(cur))
		b.WriteString("\n\n")
		b.WriteString(renderDevice(state))
	}
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("✗ %v", m.err)))
	} else if m.status != "" {
		b.WriteString("\n" + styles.ok.Render("✓ "+m.status))
	}

	helpView := m.help.ShortHelpView([]key.Binding{
		m.keys.playPause, m.keys.next, m.keys.previous, m.keys.volUp, m.keys.volDown,
		m.keys.shuffle, m.keys.repeat, m.keys.devices, m.keys.quit,
	})
	return styles.frame.Render(b.String()) + "\n" + helpView
}

func renderTrack(cur *models.CurrentlyPlaying) string {
	if cur == nil {
		return styles.muted.Render("Nothing playing")
	}

	artists := strings.Join(cur.Track().ArtistNames(), ", ")
	lines := []string{
		styles.ok.Render(cur.TrackName),
		artists,
	}
	if cur.AlbumName != "" {
		lines = append(lines, styles.muted.Render(cur.AlbumName))
	}

	bar := formatter.ProgressBar(cur.ProgressMS, cur.DurationMS, 30)
	lines = append(lines, fmt.Sprintf("%s %s / %s",
		bar, shared.FormatDuration(cur.ProgressMS), shared.FormatDuration(cur.DurationMS)))
	return strings.Join(lines, "\n")
}

func renderDevice(state *models.PlayerState) string {
	playing := "⏸ paused"
	if state.IsPlaying {
		playing = "▶ playing"
	}
	return fmt.Sprintf("%s on %s (%s)\nvolume %d%% • shuffle %s • repeat %s",
		playing,
		state.Device.Name,
		state.Device.Type,
		state.Device.VolumePercent,
		shared.OnOff(state.ShuffleState),
		state.RepeatState,
	)
}
