package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/spotbox/internal/credentials"
	"github.com/desertthunder/spotbox/internal/mapper"
	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/desertthunder/spotbox/internal/transport"
)

// DefaultAPIHost is the Spotify Web API host.
const DefaultAPIHost = "api.spotify.com"

// MaxSaveTracks is the most ids PUT /v1/me/tracks accepts.
const MaxSaveTracks = 50

// PlayerOpts carries collaborators for [NewSpotifyPlayer]. Nil values use defaults.
type PlayerOpts struct {
	Transport transport.Transport
	Clock     credentials.Clock
	Logger    *log.Logger
	Recorder  RefreshRecorder
	Insecure  bool
}

// SpotifyPlayer implements [Player]. A mutex serializes every call over the shared executor buffers.
type SpotifyPlayer struct {
	mu        sync.Mutex
	exec      *Executor
	refresher *TokenRefresher
	store     *credentials.Store
	host      string
	market    string
	logger    *log.Logger
}

// NewSpotifyPlayer wires a credential store, executor and refresher from config.
func NewSpotifyPlayer(cfg *shared.Config, opts PlayerOpts) (*SpotifyPlayer, error) {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	t := opts.Transport
	if t == nil {
		t = transport.NewHTTPTransport(nil, cfg.API.Timeout())
	}

	creds := cfg.Credentials.Spotify
	store := credentials.New(creds.ClientID, creds.ClientSecret, creds.RefreshToken, opts.Clock)

	exec := NewExecutor(ExecutorOpts{
		Transport:          t,
		Store:              store,
		ResponseBufferSize: cfg.API.ResponseBufferSize,
		HeaderBufferSize:   cfg.API.HeaderBufferSize,
		Insecure:           opts.Insecure,
		Logger:             logger,
	})

	refresher, err := NewTokenRefresher(exec, store, cfg.API.TokenURL, logger)
	if err != nil {
		return nil, err
	}
	if opts.Recorder != nil {
		refresher.SetRecorder(opts.Recorder)
	}
	style, err := ParseAuthStyle(cfg.API.AuthStyle)
	if err != nil {
		return nil, err
	}
	refresher.SetAuthStyle(style)

	host := cfg.API.Host
	if host == "" {
		host = DefaultAPIHost
	}

	return &SpotifyPlayer{
		exec:      exec,
		refresher: refresher,
		store:     store,
		host:      host,
		market:    cfg.API.Market,
		logger:    logger,
	}, nil
}

// EnsureFresh refreshes the access token when it is stale.
func (p *SpotifyPlayer) EnsureFresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refresher.EnsureFresh(ctx)
}

// Refresh forces a token refresh.
func (p *SpotifyPlayer) Refresh(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refresher.Refresh(ctx)
}

// TokenStatus reports whether a fresh token is held and when it expires.
func (p *SpotifyPlayer) TokenStatus() (fresh bool, expiresAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tok := p.store.Token()
	if tok == nil {
		return false, time.Time{}
	}
	return p.store.IsFresh(), tok.Expiry
}

// Token implements [oauth2.TokenSource], refreshing under the player mutex when the held token is stale.
func (p *SpotifyPlayer) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.refresher.EnsureFresh(context.Background()); err != nil {
		return nil, err
	}
	return p.store.Token(), nil
}

var _ oauth2.TokenSource = (*SpotifyPlayer)(nil)

// call runs req with a fresh token. An expired-token API error triggers exactly one refresh and retry.
func (p *SpotifyPlayer) call(ctx context.Context, req Request, fn func(RawResponse) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.refresher.EnsureFresh(ctx); err != nil {
		return err
	}

	req.Host = p.host
	req.Bearer = true

	err := p.exec.Do(ctx, req, fn)
	if !mapper.IsTokenExpired(err) {
		return err
	}

	p.logger.Warn("access token expired, refreshing and retrying", "path", req.Path)
	p.store.Clear()
	if err := p.refresher.Refresh(ctx); err != nil {
		return err
	}
	return p.exec.Do(ctx, req, fn)
}

func (p *SpotifyPlayer) write(ctx context.Context, method, path string, query url.Values, body []byte) error {
	req := Request{Method: method, Path: path, Query: query, Body: body}
	return p.call(ctx, req, func(r RawResponse) error {
		return mapper.CheckStatus(r.Status, r.Body)
	})
}

func (p *SpotifyPlayer) marketQuery() url.Values {
	q := url.Values{}
	if p.market != "" {
		q.Set("market", p.market)
	}
	return q
}

func withDevice(q url.Values, deviceID string) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	return q
}

// PlayerState fetches GET /v1/me/player.
func (p *SpotifyPlayer) PlayerState(ctx context.Context) (*models.PlayerState, error) {
	var state *models.PlayerState
	req := Request{Method: transport.MethodGet, Path: "/v1/me/player", Query: p.marketQuery()}
	err := p.call(ctx, req, func(r RawResponse) error {
		var err error
		state, err = mapper.DecodePlayerState(r.Status, r.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// CurrentlyPlaying fetches GET /v1/me/player/currently-playing.
func (p *SpotifyPlayer) CurrentlyPlaying(ctx context.Context) (*models.CurrentlyPlaying, error) {
	var current *models.CurrentlyPlaying
	req := Request{Method: transport.MethodGet, Path: "/v1/me/player/currently-playing", Query: p.marketQuery()}
	err := p.call(ctx, req, func(r RawResponse) error {
		var err error
		current, err = mapper.DecodeCurrentlyPlaying(r.Status, r.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// Devices fetches GET /v1/me/player/devices.
func (p *SpotifyPlayer) Devices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	req := Request{Method: transport.MethodGet, Path: "/v1/me/player/devices"}
	err := p.call(ctx, req, func(r RawResponse) error {
		var err error
		devices, err = mapper.DecodeDevices(r.Status, r.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return devices, nil
}

type playOffset struct {
	Position int `json:"position"`
}

type playBody struct {
	ContextURI string      `json:"context_uri"`
	Offset     *playOffset `json:"offset,omitempty"`
	PositionMS int64       `json:"position_ms"`
}

// encodePlayBody omits the offset object when offset is zero.
func encodePlayBody(contextURI string, offset int, positionMS int64) ([]byte, error) {
	body := playBody{ContextURI: contextURI, PositionMS: positionMS}
	if offset != 0 {
		body.Offset = &playOffset{Position: offset}
	}
	return json.Marshal(body)
}

// Play starts playback with PUT /v1/me/player/play.
func (p *SpotifyPlayer) Play(ctx context.Context, contextURI string, offset int, positionMS int64, deviceID string) error {
	if contextURI == "" {
		return fmt.Errorf("%w: context uri", shared.ErrMissingArgument)
	}
	if offset < 0 {
		return fmt.Errorf("%w: offset %d is negative", shared.ErrInvalidArgument, offset)
	}
	if positionMS < 0 {
		return fmt.Errorf("%w: position %d is negative", shared.ErrInvalidArgument, positionMS)
	}

	body, err := encodePlayBody(contextURI, offset, positionMS)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return p.write(ctx, transport.MethodPut, "/v1/me/player/play", withDevice(nil, deviceID), body)
}

// Resume continues the paused context with a bodiless PUT /v1/me/player/play.
func (p *SpotifyPlayer) Resume(ctx context.Context, deviceID string) error {
	return p.write(ctx, transport.MethodPut, "/v1/me/player/play", withDevice(nil, deviceID), nil)
}

// Pause pauses playback with PUT /v1/me/player/pause.
func (p *SpotifyPlayer) Pause(ctx context.Context) error {
	return p.write(ctx, transport.MethodPut, "/v1/me/player/pause", nil, nil)
}

// SetVolume sets the volume with PUT /v1/me/player/volume.
func (p *SpotifyPlayer) SetVolume(ctx context.Context, percent int, deviceID string) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("%w: volume %d outside 0..100", shared.ErrInvalidArgument, percent)
	}
	q := withDevice(url.Values{"volume_percent": {strconv.Itoa(percent)}}, deviceID)
	return p.write(ctx, transport.MethodPut, "/v1/me/player/volume", q, nil)
}

// SetShuffle toggles shuffle with PUT /v1/me/player/shuffle.
func (p *SpotifyPlayer) SetShuffle(ctx context.Context, on bool, deviceID string) error {
	q := withDevice(url.Values{"state": {strconv.FormatBool(on)}}, deviceID)
	return p.write(ctx, transport.MethodPut, "/v1/me/player/shuffle", q, nil)
}

// SetRepeat sets the repeat mode with PUT /v1/me/player/repeat.
func (p *SpotifyPlayer) SetRepeat(ctx context.Context, mode models.RepeatState, deviceID string) error {
	q := withDevice(url.Values{"state": {mode.String()}}, deviceID)
	return p.write(ctx, transport.MethodPut, "/v1/me/player/repeat", q, nil)
}

// Next skips forward with POST /v1/me/player/next.
func (p *SpotifyPlayer) Next(ctx context.Context) error {
	return p.write(ctx, transport.MethodPost, "/v1/me/player/next", nil, nil)
}

// Previous skips back with POST /v1/me/player/previous.
func (p *SpotifyPlayer) Previous(ctx context.Context) error {
	return p.write(ctx, transport.MethodPost, "/v1/me/player/previous", nil, nil)
}

// Seek moves the playhead with PUT /v1/me/player/seek.
func (p *SpotifyPlayer) Seek(ctx context.Context, positionMS int64) error {
	if positionMS < 0 {
		return fmt.Errorf("%w: position %d is negative", shared.ErrInvalidArgument, positionMS)
	}
	q := url.Values{"position_ms": {strconv.FormatInt(positionMS, 10)}}
	return p.write(ctx, transport.MethodPut, "/v1/me/player/seek", q, nil)
}

// Search looks up tracks with GET /v1/search.
func (p *SpotifyPlayer) Search(ctx context.Context, query string, limit int) (*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if limit < 1 || limit > models.MaxSearchResults {
		return nil, fmt.Errorf("%w: limit %d outside 1..%d", shared.ErrInvalidArgument, limit, models.MaxSearchResults)
	}

	q := p.marketQuery()
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))

	var result *models.SearchResult
	req := Request{Method: transport.MethodGet, Path: "/v1/search", Query: q}
	err := p.call(ctx, req, func(r RawResponse) error {
		var err error
		result, err = mapper.DecodeSearch(r.Status, r.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Query = query
	return result, nil
}

// SaveTracks adds tracks to the library with PUT /v1/me/tracks.
func (p *SpotifyPlayer) SaveTracks(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: track ids", shared.ErrMissingArgument)
	}
	if len(ids) > MaxSaveTracks {
		return fmt.Errorf("%w: %d ids, at most %d", shared.ErrInvalidArgument, len(ids), MaxSaveTracks)
	}
	for _, id := range ids {
		if strings.TrimSpace(id) == "" || strings.Contains(id, ",") {
			return fmt.Errorf("%w: track id %q", shared.ErrInvalidArgument, id)
		}
	}

	q := url.Values{"ids": {strings.Join(ids, ",")}}
	return p.write(ctx, transport.MethodPut, "/v1/me/tracks", q, nil)
}

var _ Player = (*SpotifyPlayer)(nil)
