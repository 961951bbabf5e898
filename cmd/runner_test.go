package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/repositories"
	"github.com/desertthunder/spotbox/internal/shared"
	tu "github.com/desertthunder/spotbox/internal/testing"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

func init() {
	color.NoColor = true
}

// mockPlayer implements services.Player for command tests
type mockPlayer struct {
	mu      sync.Mutex
	state   *models.PlayerState
	current *models.CurrentlyPlaying
	devices []models.Device
	result  *models.SearchResult
	err     error
	calls   []string
	args    []any
}

func (m *mockPlayer) record(call string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	m.args = args
	return m.err
}

func (m *mockPlayer) lastCall() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return ""
	}
	return m.calls[len(m.calls)-1]
}

func (m *mockPlayer) EnsureFresh(context.Context) error { return nil }

func (m *mockPlayer) PlayerState(context.Context) (*models.PlayerState, error) {
	return m.state, m.record("state")
}

func (m *mockPlayer) CurrentlyPlaying(context.Context) (*models.CurrentlyPlaying, error) {
	return m.current, m.record("current")
}

func (m *mockPlayer) Devices(context.Context) ([]models.Device, error) {
	return m.devices, m.record("devices")
}

func (m *mockPlayer) Play(_ context.Context, uri string, offset int, position int64, device string) error {
	return m.record("play", uri, offset, position, device)
}

func (m *mockPlayer) Resume(_ context.Context, device string) error {
	return m.record("resume", device)
}

func (m *mockPlayer) Pause(context.Context) error { return m.record("pause") }

func (m *mockPlayer) SetVolume(_ context.Context, percent int, device string) error {
	return m.record("volume", percent, device)
}

func (m *mockPlayer) SetShuffle(_ context.Context, on bool, device string) error {
	return m.record("shuffle", on, device)
}

func (m *mockPlayer) SetRepeat(_ context.Context, mode models.RepeatState, device string) error {
	return m.record("repeat", mode, device)
}

func (m *mockPlayer) Next(context.Context) error { return m.record("next") }

func (m *mockPlayer) Previous(context.Context) error { return m.record("previous") }

func (m *mockPlayer) Seek(_ context.Context, position int64) error {
	return m.record("seek", position)
}

func (m *mockPlayer) Search(_ context.Context, query string, limit int) (*models.SearchResult, error) {
	return m.result, m.record("search", query, limit)
}

func (m *mockPlayer) SaveTracks(_ context.Context, ids ...string) error {
	return m.record("save", strings.Join(ids, ","))
}

// mockAuth implements Authenticator
type mockAuth struct {
	fresh     bool
	expiresAt time.Time
	err       error
	refreshes int
}

func (m *mockAuth) Refresh(context.Context) error {
	m.refreshes++
	if m.err == nil {
		m.fresh = true
		m.expiresAt = time.Now().Add(time.Hour)
	}
	return m.err
}

func (m *mockAuth) TokenStatus() (bool, time.Time) { return m.fresh, m.expiresAt }

func sampleState() *models.PlayerState {
	return &models.PlayerState{
		Device:      models.Device{ID: "dev-1", Name: "Kitchen", Type: "Speaker", IsActive: true, VolumePercent: 40},
		ProgressMS:  1000,
		IsPlaying:   true,
		RepeatState: models.RepeatOff,
	}
}

func sampleCurrent() *models.CurrentlyPlaying {
	return &models.CurrentlyPlaying{
		TrackName:  "Song One",
		TrackURI:   "spotify:track:1",
		AlbumName:  "Album One",
		AlbumURI:   "spotify:album:1",
		Artists:    []models.Artist{{Name: "Artist One", URI: "spotify:artist:1"}},
		IsPlaying:  true,
		ProgressMS: 60000,
		DurationMS: 180000,
	}
}

func openTestDB(t *testing.T) (*repositories.SnapshotRepository, *repositories.RefreshLogRepository) {
	t.Helper()
	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repositories.NewSnapshotRepository(db), repositories.NewRefreshLogRepository(db, 0)
}

// run executes args against a fresh command tree built from runner.
func run(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "spotbox", Commands: runner.register()}
	return app.Run(context.Background(), append([]string{"spotbox"}, args...))
}

func newTestRunner(p *mockPlayer) (*Runner, *bytes.Buffer) {
	output := &bytes.Buffer{}
	opts := RunnerOpts{
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Output: output,
	}
	if p != nil {
		opts.Player = p
	}
	return NewRunner(opts), output
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			player := &mockPlayer{}
			auth := &mockAuth{}
			snapshots, refreshLog := openTestDB(t)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Player:     player,
				Auth:       auth,
				Snapshots:  snapshots,
				RefreshLog: refreshLog,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.player != player || runner.auth != auth {
				t.Error("expected player and auth to be set")
			}
			if runner.snapshots != snapshots || runner.refreshLog != refreshLog {
				t.Error("expected repositories to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writes plain text without formatting", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("simple text")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "simple text" {
				t.Errorf("expected 'simple text', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("writeOK and writeFail", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writeOK("done %d", 1)
		runner.writeFail("broken")

		if !strings.Contains(output.String(), "✓ done 1") || !strings.Contains(output.String(), "✗ broken") {
			t.Errorf("unexpected status lines %q", output.String())
		}
	})
}
