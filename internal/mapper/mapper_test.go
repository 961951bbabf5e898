package mapper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/shared"
)

const playerBody = `{
	"device": {
		"id": "dev-1",
		"name": "Kitchen",
		"type": "Speaker",
		"is_active": true,
		"is_private_session": true,
		"volume_percent": 65
	},
	"progress_ms": 12000,
	"is_playing": true,
	"shuffle_state": false,
	"repeat_state": "context",
	"timestamp": 1700000000000
}`

func artistsJSON(n int) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf(`{"name":"Artist %d","uri":"spotify:artist:%d"}`, i, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func currentBody(artists int) string {
	return fmt.Sprintf(`{
		"timestamp": 1700000000000,
		"progress_ms": 5000,
		"is_playing": true,
		"item": {
			"name": "Song",
			"uri": "spotify:track:abc",
			"duration_ms": 215000,
			"artists": %s,
			"album": {
				"name": "Album",
				"uri": "spotify:album:xyz",
				"images": [
					{"height": 640, "width": 640, "url": "https://i.scdn.co/image/a"},
					{"height": 300, "width": 300, "url": "https://i.scdn.co/image/b"},
					{"height": null, "width": null, "url": "https://i.scdn.co/image/c"},
					{"height": 64, "width": 64, "url": "https://i.scdn.co/image/d"}
				]
			}
		}
	}`, artistsJSON(artists))
}

func TestClassify(t *testing.T) {
	tc := []struct {
		message string
		want    ErrorKind
	}{
		{"The access token expired", KindTokenExpired},
		{"Only valid bearer authentication supported", KindBadAuth},
		{"Invalid access token", KindBadAuth},
		{"No token provided", KindBadAuth},
		{"the access token expired", KindOther},
		{"Player command failed: No active device found", KindOther},
		{"", KindOther},
	}

	for _, tt := range tc {
		t.Run(tt.message, func(t *testing.T) {
			if got := Classify(tt.message); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}

func TestDecodePlayerState(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		state, err := DecodePlayerState(200, []byte(playerBody))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := &models.PlayerState{
			Device: models.Device{
				ID: "dev-1", Name: "Kitchen", Type: "Speaker",
				IsActive: true, IsPrivateSession: true, VolumePercent: 65,
			},
			ProgressMS:  12000,
			IsPlaying:   true,
			RepeatState: models.RepeatContext,
		}
		if !reflect.DeepEqual(state, want) {
			t.Errorf("got %+v, want %+v", state, want)
		}
	})

	t.Run("decoding twice is structurally equal", func(t *testing.T) {
		a, _ := DecodePlayerState(200, []byte(playerBody))
		b, _ := DecodePlayerState(200, []byte(playerBody))
		if !reflect.DeepEqual(a, b) {
			t.Error("expected equal records")
		}
	})

	t.Run("repeat mapping", func(t *testing.T) {
		tc := map[string]models.RepeatState{
			"off":     models.RepeatOff,
			"context": models.RepeatContext,
			"track":   models.RepeatTrack,
			"Off":     models.RepeatTrack,
			"weird":   models.RepeatTrack,
		}
		for wire, want := range tc {
			body := strings.Replace(playerBody, `"context"`, fmt.Sprintf("%q", wire), 1)
			state, err := DecodePlayerState(200, []byte(body))
			if err != nil {
				t.Fatalf("%s: unexpected error %v", wire, err)
			}
			if state.RepeatState != want {
				t.Errorf("%s: got %v, want %v", wire, state.RepeatState, want)
			}
		}
	})

	t.Run("missing device", func(t *testing.T) {
		_, err := DecodePlayerState(200, []byte(`{"progress_ms":1,"is_playing":false,"shuffle_state":false,"repeat_state":"off"}`))
		var fe *shared.FieldError
		if !errors.As(err, &fe) || fe.Key != "device" {
			t.Fatalf("expected MissingField(device), got %v", err)
		}
		if !errors.Is(err, shared.ErrMapping) {
			t.Error("missing field should be a mapping error")
		}
	})

	t.Run("null device is no active device", func(t *testing.T) {
		state, err := DecodePlayerState(200, []byte(`{"device":null,"is_playing":false}`))
		if err != nil || state != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", state, err)
		}
	})

	t.Run("no content", func(t *testing.T) {
		for _, tc := range []struct {
			status int
			body   string
		}{{204, ""}, {200, ""}, {200, "  \n"}} {
			state, err := DecodePlayerState(tc.status, []byte(tc.body))
			if err != nil || state != nil {
				t.Errorf("status %d body %q: expected (nil, nil), got (%v, %v)", tc.status, tc.body, state, err)
			}
		}
	})

	t.Run("missing nested fields", func(t *testing.T) {
		tc := []struct {
			remove string
			key    string
		}{
			{`"id": "dev-1",`, "device.id"},
			{",\n\t\t\"volume_percent\": 65", "device.volume_percent"},
			{`"progress_ms": 12000,`, "progress_ms"},
			{`"shuffle_state": false,`, "shuffle_state"},
		}
		for _, tt := range tc {
			if !strings.Contains(playerBody, tt.remove) {
				t.Fatalf("fixture does not contain %q", tt.remove)
			}
			body := strings.Replace(playerBody, tt.remove, "", 1)
			_, err := DecodePlayerState(200, []byte(body))
			var fe *shared.FieldError
			if !errors.As(err, &fe) {
				t.Errorf("removing %s: expected FieldError, got %v", tt.key, err)
				continue
			}
			if fe.Key != tt.key {
				t.Errorf("removing %s: got key %s", tt.key, fe.Key)
			}
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		body := strings.Replace(playerBody, `"is_playing": true`, `"is_playing": "yes"`, 1)
		_, err := DecodePlayerState(200, []byte(body))
		if !errors.Is(err, shared.ErrMissingField) {
			t.Errorf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("api error", func(t *testing.T) {
		_, err := DecodePlayerState(401, []byte(`{"error":{"status":401,"message":"The access token expired"}}`))
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Kind != KindTokenExpired || apiErr.Status != 401 {
			t.Errorf("unexpected %+v", apiErr)
		}
		if !IsTokenExpired(err) || !errors.Is(err, shared.ErrAPI) {
			t.Error("expected token expired api error")
		}
	})

	t.Run("api error inside 200", func(t *testing.T) {
		_, err := DecodePlayerState(200, []byte(`{"error":{"message":"Invalid access token"},"device":{}}`))
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Kind != KindBadAuth {
			t.Errorf("expected bad auth APIError, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := DecodePlayerState(200, []byte(`{"device":`))
		if !errors.Is(err, shared.ErrInvalidJSON) {
			t.Errorf("expected ErrInvalidJSON, got %v", err)
		}
	})

	t.Run("non-json error page", func(t *testing.T) {
		_, err := DecodePlayerState(502, []byte(`<html>bad gateway</html>`))
		var se *shared.StatusError
		if !errors.As(err, &se) || se.Status != 502 {
			t.Errorf("expected StatusError 502, got %v", err)
		}
	})

	t.Run("long strings are truncated", func(t *testing.T) {
		body := strings.Replace(playerBody, `"Kitchen"`, fmt.Sprintf("%q", strings.Repeat("k", 200)), 1)
		state, err := DecodePlayerState(200, []byte(body))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(state.Device.Name) != models.MaxDeviceNameLen {
			t.Errorf("expected name truncated to %d, got %d", models.MaxDeviceNameLen, len(state.Device.Name))
		}
	})
}

func TestDecodeCurrentlyPlaying(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		cur, err := DecodeCurrentlyPlaying(200, []byte(currentBody(2)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cur.TrackName != "Song" || cur.TrackURI != "spotify:track:abc" || cur.DurationMS != 215000 {
			t.Errorf("unexpected track fields %+v", cur)
		}
		if cur.AlbumName != "Album" || cur.AlbumURI != "spotify:album:xyz" {
			t.Errorf("unexpected album fields %+v", cur)
		}
		if !cur.IsPlaying || cur.ProgressMS != 5000 {
			t.Errorf("unexpected playback fields %+v", cur)
		}
		if len(cur.Artists) != 2 || cur.Artists[1].Name != "Artist 1" {
			t.Errorf("unexpected artists %+v", cur.Artists)
		}
	})

	t.Run("artists capped at capacity", func(t *testing.T) {
		cur, err := DecodeCurrentlyPlaying(200, []byte(currentBody(8)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cur.Artists) != models.MaxArtists {
			t.Errorf("expected %d artists, got %d", models.MaxArtists, len(cur.Artists))
		}
		if cur.Artists[4].URI != "spotify:artist:4" {
			t.Errorf("artists should be positional, got %+v", cur.Artists[4])
		}
	})

	t.Run("images capped with nullable dimensions", func(t *testing.T) {
		cur, _ := DecodeCurrentlyPlaying(200, []byte(currentBody(1)))
		if len(cur.AlbumImages) != models.MaxImages {
			t.Fatalf("expected %d images, got %d", models.MaxImages, len(cur.AlbumImages))
		}
		if img := cur.AlbumImages[2]; img.Height != 0 || img.Width != 0 || img.URL != "https://i.scdn.co/image/c" {
			t.Errorf("unexpected image %+v", img)
		}
	})

	t.Run("null item is nothing playing", func(t *testing.T) {
		cur, err := DecodeCurrentlyPlaying(200, []byte(`{"is_playing":false,"item":null}`))
		if err != nil || cur != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", cur, err)
		}
	})

	t.Run("missing item", func(t *testing.T) {
		_, err := DecodeCurrentlyPlaying(200, []byte(`{"is_playing":false,"progress_ms":0}`))
		var fe *shared.FieldError
		if !errors.As(err, &fe) || fe.Key != "item" {
			t.Errorf("expected MissingField(item), got %v", err)
		}
	})

	t.Run("artist without uri", func(t *testing.T) {
		body := strings.Replace(currentBody(3), `"uri":"spotify:artist:1"`, `"href":"x"`, 1)
		_, err := DecodeCurrentlyPlaying(200, []byte(body))
		var fe *shared.FieldError
		if !errors.As(err, &fe) || fe.Key != "item.artists[1].uri" {
			t.Errorf("expected MissingField(item.artists[1].uri), got %v", err)
		}
	})

	t.Run("no content", func(t *testing.T) {
		cur, err := DecodeCurrentlyPlaying(204, nil)
		if err != nil || cur != nil {
			t.Errorf("expected (nil, nil), got (%v, %v)", cur, err)
		}
	})
}

func TestDecodeDevices(t *testing.T) {
	device := `{"id":"d%d","name":"Device %d","type":"Computer","is_active":false,"volume_percent":50}`

	t.Run("capped list", func(t *testing.T) {
		parts := make([]string, 12)
		for i := range parts {
			parts[i] = fmt.Sprintf(device, i, i)
		}
		body := `{"devices":[` + strings.Join(parts, ",") + `]}`

		devices, err := DecodeDevices(200, []byte(body))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(devices) != models.MaxDevices {
			t.Errorf("expected %d devices, got %d", models.MaxDevices, len(devices))
		}
		if devices[9].ID != "d9" {
			t.Errorf("unexpected device %+v", devices[9])
		}
	})

	t.Run("empty list", func(t *testing.T) {
		devices, err := DecodeDevices(200, []byte(`{"devices":[]}`))
		if err != nil || len(devices) != 0 {
			t.Errorf("expected empty list, got %v, %v", devices, err)
		}
	})

	t.Run("missing devices", func(t *testing.T) {
		_, err := DecodeDevices(200, []byte(`{}`))
		if !errors.Is(err, shared.ErrMissingField) {
			t.Errorf("expected ErrMissingField, got %v", err)
		}
	})
}

func TestDecodeSearch(t *testing.T) {
	item := `{"name":"T%d","uri":"spotify:track:%d","duration_ms":1000,"artists":[{"name":"A","uri":"spotify:artist:a"}],"album":{"name":"Al","uri":"spotify:album:al","images":[]}}`
	parts := make([]string, 7)
	for i := range parts {
		parts[i] = fmt.Sprintf(item, i, i)
	}
	body := `{"tracks":{"href":"x","items":[` + strings.Join(parts, ",") + `]}}`

	result, err := DecodeSearch(200, []byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Tracks) != models.MaxSearchResults {
		t.Errorf("expected %d tracks, got %d", models.MaxSearchResults, len(result.Tracks))
	}
	if result.Tracks[0].AlbumName != "Al" || result.Tracks[4].Name != "T4" {
		t.Errorf("unexpected tracks %+v", result.Tracks)
	}

	_, err = DecodeSearch(200, []byte(`{"tracks":{}}`))
	var fe *shared.FieldError
	if !errors.As(err, &fe) || fe.Key != "tracks.items" {
		t.Errorf("expected MissingField(tracks.items), got %v", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tc := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "no content", status: 204},
		{name: "ok with snapshot body", status: 200, body: `{"snapshot_id":"x"}`},
		{name: "ok with junk", status: 202, body: `accepted`},
		{name: "api error", status: 404, body: `{"error":{"status":404,"message":"Player command failed: No active device found"}}`, want: shared.ErrAPI},
		{name: "bare status", status: 500, want: shared.ErrHTTPStatus},
		{name: "html status", status: 503, body: `<html/>`, want: shared.ErrHTTPStatus},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStatus(tt.status, []byte(tt.body))
			if tt.want == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDecodeToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		tok, err := DecodeToken(200, []byte(`{"access_token":"abc","token_type":"Bearer","expires_in":3600,"scope":"user-read-playback-state"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.AccessToken != "abc" || tok.ExpiresIn != 3600 {
			t.Errorf("unexpected token %+v", tok)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		tc := []struct {
			name string
			body string
			msg  string
		}{
			{name: "oauth form", body: `{"error":"invalid_grant","error_description":"Invalid refresh token"}`, msg: "invalid_grant: Invalid refresh token"},
			{name: "oauth code only", body: `{"error":"invalid_client"}`, msg: "invalid_client"},
			{name: "object form", body: `{"error":{"status":400,"message":"Bad request"}}`, msg: "Bad request"},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				_, err := DecodeToken(400, []byte(tt.body))
				var rr *shared.RemoteRejectedError
				if !errors.As(err, &rr) {
					t.Fatalf("expected RemoteRejectedError, got %v", err)
				}
				if rr.Message != tt.msg {
					t.Errorf("got message %q, want %q", rr.Message, tt.msg)
				}
				if !errors.Is(err, shared.ErrAuth) {
					t.Error("rejection should be an auth error")
				}
			})
		}
	})

	t.Run("malformed", func(t *testing.T) {
		tc := map[string]string{
			"missing token":   `{"expires_in":3600}`,
			"empty token":     `{"access_token":"","expires_in":3600}`,
			"token not text":  `{"access_token":5,"expires_in":3600}`,
			"missing expiry":  `{"access_token":"abc"}`,
			"negative expiry": `{"access_token":"abc","expires_in":-1}`,
			"string expiry":   `{"access_token":"abc","expires_in":"3600"}`,
			"oversized token": fmt.Sprintf(`{"access_token":%q,"expires_in":3600}`, strings.Repeat("t", models.MaxAccessTokenLen+1)),
			"not json":        `access_token=abc`,
		}
		for name, body := range tc {
			t.Run(name, func(t *testing.T) {
				_, err := DecodeToken(200, []byte(body))
				if !errors.Is(err, shared.ErrMalformedResponse) {
					t.Errorf("expected ErrMalformedResponse, got %v", err)
				}
			})
		}
	})

	t.Run("zero expiry is accepted", func(t *testing.T) {
		tok, err := DecodeToken(200, []byte(`{"access_token":"abc","expires_in":0}`))
		if err != nil || tok.ExpiresIn != 0 {
			t.Errorf("got %+v, %v", tok, err)
		}
	})
}
