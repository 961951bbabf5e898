// package formatter renders playback records as plain text, Markdown, JSON and tables
package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/repositories"
	"github.com/desertthunder/spotbox/internal/shared"
)

const (
	noDevice   = "No active device"
	notPlaying = "Nothing playing"
)

// ToJSON encodes v for --json output.
func ToJSON(v any, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(v, pretty)
}

// PlayerStateText renders the player state as labelled lines. A nil state means no active device.
func PlayerStateText(state *models.PlayerState) string {
	if state == nil {
		return noDevice + "\n"
	}

	var b strings.Builder
	d := state.Device
	fmt.Fprintf(&b, "Device: %s (%s)\n", d.Name, d.Type)
	fmt.Fprintf(&b, "Volume: %d%%\n", d.VolumePercent)
	fmt.Fprintf(&b, "Status: %s\n", playingLabel(state.IsPlaying))
	fmt.Fprintf(&b, "Progress: %s\n", shared.FormatDuration(state.ProgressMS))
	fmt.Fprintf(&b, "Shuffle: %s\n", shared.OnOff(state.ShuffleState))
	fmt.Fprintf(&b, "Repeat: %s\n", state.RepeatState)
	if d.IsPrivateSession {
		b.WriteString("Private session\n")
	}
	if d.IsRestricted {
		b.WriteString("Restricted: device does not accept commands\n")
	}
	return b.String()
}

// CurrentlyPlayingText renders the playing track. A nil record means nothing is playing.
func CurrentlyPlayingText(cur *models.CurrentlyPlaying) string {
	if cur == nil {
		return notPlaying + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n", strings.Join(cur.Track().ArtistNames(), ", "), cur.TrackName)
	if cur.AlbumName != "" {
		fmt.Fprintf(&b, "Album: %s\n", cur.AlbumName)
	}
	fmt.Fprintf(&b, "%s %s / %s [%s]\n",
		ProgressBar(cur.ProgressMS, cur.DurationMS, 20),
		shared.FormatDuration(cur.ProgressMS),
		shared.FormatDuration(cur.DurationMS),
		playingLabel(cur.IsPlaying),
	)
	return b.String()
}

// CurrentlyPlayingMarkdown renders the playing track with its largest album image.
func CurrentlyPlayingMarkdown(cur *models.CurrentlyPlaying) string {
	if cur == nil {
		return "_" + notPlaying + "_\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cur.TrackName)
	if img, ok := largestImage(cur.AlbumImages); ok {
		fmt.Fprintf(&b, "![%s](%s)\n\n", cur.AlbumName, img.URL)
	}

	b.WriteString("**Artists**: ")
	for i, a := range cur.Artists {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s (`%s`)", a.Name, a.URI)
	}
	b.WriteString("\n")

	if cur.AlbumName != "" {
		fmt.Fprintf(&b, "**Album**: %s (`%s`)\n", cur.AlbumName, cur.AlbumURI)
	}
	fmt.Fprintf(&b, "**Track**: `%s`\n", cur.TrackURI)
	fmt.Fprintf(&b, "**Position**: %s / %s\n", shared.FormatDuration(cur.ProgressMS), shared.FormatDuration(cur.DurationMS))
	return b.String()
}

// ProgressBar draws a fixed-width bar of progress over duration.
func ProgressBar(progress, duration int64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if duration > 0 {
		filled = int(min(max(progress, 0), duration) * int64(width) / duration)
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// DevicesTable writes a table of devices, marking the active one.
func DevicesTable(w io.Writer, devices []models.Device) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Name", "Type", "Volume", "Status", "Device ID"})
	for i, d := range devices {
		status := "Inactive"
		if d.IsActive {
			status = "● Active"
		}
		if d.IsRestricted {
			status += " (restricted)"
		}
		t.AppendRow(table.Row{i + 1, d.Name, d.Type, fmt.Sprintf("%d%%", d.VolumePercent), status, d.ID})
	}
	t.AppendFooter(table.Row{"", "Total", len(devices)})
	t.Render()
}

// SearchTable writes one row per matching track.
func SearchTable(w io.Writer, result *models.SearchResult) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Track", "Artists", "Album", "Duration", "URI"})
	if result != nil {
		for i, tr := range result.Tracks {
			t.AppendRow(table.Row{
				i + 1,
				tr.Name,
				strings.Join(tr.ArtistNames(), ", "),
				tr.AlbumName,
				shared.FormatDuration(tr.DurationMS),
				tr.URI,
			})
		}
	}
	t.Render()
}

// SnapshotTable writes a stored snapshot's metadata and payload.
func SnapshotTable(w io.Writer, s *repositories.Snapshot) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Kind", "Slot", "Captured", "Payload"})
	t.AppendRow(table.Row{s.Kind, s.Slot, s.CapturedAt.Format(time.RFC3339), string(s.Payload)})
	t.Render()
}

// RefreshLogTable writes the recent refresh attempts, newest first.
func RefreshLogTable(w io.Writer, attempts []repositories.RefreshAttempt) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Attempted", "Result", "Expires In", "Error"})
	for _, a := range attempts {
		result, expires := "failed", ""
		if a.Succeeded {
			result = "ok"
			expires = (time.Duration(a.ExpiresIn) * time.Second).String()
		}
		t.AppendRow(table.Row{a.AttemptedAt.Format(time.RFC3339), result, expires, a.Error})
	}
	t.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func largestImage(images []models.Image) (models.Image, bool) {
	if len(images) == 0 {
		return models.Image{}, false
	}
	best := images[0]
	for _, img := range images[1:] {
		if img.Width*img.Height > best.Width*best.Height {
			best = img
		}
	}
	return best, true
}

func playingLabel(playing bool) string {
	if playing {
		return "playing"
	}
	return "paused"
}
