package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/spotbox/internal/credentials"
	"github.com/desertthunder/spotbox/internal/mapper"
	"github.com/desertthunder/spotbox/internal/shared"
	"github.com/desertthunder/spotbox/internal/transport"
)

// DefaultTokenURL is the Spotify accounts token endpoint.
const DefaultTokenURL = "https://accounts.spotify.com/api/token"

// RefreshRecorder is notified after every refresh attempt. Tokens are never passed to it.
type RefreshRecorder interface {
	RecordRefresh(ctx context.Context, expiresIn int64, err error) error
}

// TokenRefresher performs the OAuth2 refresh-token grant and stores the result.
type TokenRefresher struct {
	exec     *Executor
	store    *credentials.Store
	endpoint oauth2.Endpoint
	host     string
	path     string
	recorder RefreshRecorder
	logger   *log.Logger
}

// NewTokenRefresher creates a refresher posting to tokenURL (defaults to [DefaultTokenURL]).
func NewTokenRefresher(exec *Executor, store *credentials.Store, tokenURL string, logger *log.Logger) (*TokenRefresher, error) {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	u, err := url.Parse(tokenURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid token url %q", tokenURL)
	}
	if logger == nil {
		logger = exec.logger
	}

	return &TokenRefresher{
		exec:     exec,
		store:    store,
		endpoint: oauth2.Endpoint{TokenURL: tokenURL, AuthStyle: oauth2.AuthStyleInParams},
		host:     u.Host,
		path:     u.EscapedPath(),
		logger:   logger,
	}, nil
}

// SetRecorder attaches a [RefreshRecorder].
func (r *TokenRefresher) SetRecorder(rec RefreshRecorder) { r.recorder = rec }

// ParseAuthStyle maps the api.auth_style config value onto an [oauth2.AuthStyle].
func ParseAuthStyle(s string) (oauth2.AuthStyle, error) {
	switch s {
	case "", shared.AuthStyleParams:
		return oauth2.AuthStyleInParams, nil
	case shared.AuthStyleHeader:
		return oauth2.AuthStyleInHeader, nil
	}
	return oauth2.AuthStyleAutoDetect, fmt.Errorf("%w: unknown auth style %q", shared.ErrInvalidConfig, s)
}

// SetAuthStyle selects how client credentials reach the token endpoint.
// [oauth2.AuthStyleInHeader] sends them as basic auth; anything else sends them in the form body.
func (r *TokenRefresher) SetAuthStyle(style oauth2.AuthStyle) {
	if style != oauth2.AuthStyleInHeader {
		style = oauth2.AuthStyleInParams
	}
	r.endpoint.AuthStyle = style
}

func (r *TokenRefresher) inHeader() bool {
	return r.endpoint.AuthStyle == oauth2.AuthStyleInHeader
}

// body encodes the grant in a fixed field order.
func (r *TokenRefresher) body() []byte {
	var sb strings.Builder
	if !r.inHeader() {
		sb.WriteString("client_id=")
		sb.WriteString(url.QueryEscape(r.store.ClientID()))
		sb.WriteString("&client_secret=")
		sb.WriteString(url.QueryEscape(r.store.ClientSecret()))
		sb.WriteString("&")
	}
	sb.WriteString("refresh_token=")
	sb.WriteString(url.QueryEscape(r.store.RefreshToken()))
	sb.WriteString("&grant_type=refresh_token")
	return []byte(sb.String())
}

// Refresh exchanges the refresh token for a new access token.
//
// A rejected or malformed response leaves the store untouched.
func (r *TokenRefresher) Refresh(ctx context.Context) error {
	req := Request{
		Method:      transport.MethodPost,
		Host:        r.host,
		Path:        r.path,
		Body:        r.body(),
		ContentType: "application/x-www-form-urlencoded",
		Basic:       r.inHeader(),
	}

	var expiresIn int64
	err := r.exec.Do(ctx, req, func(resp RawResponse) error {
		tok, err := mapper.DecodeToken(resp.Status, resp.Body)
		if err != nil {
			return err
		}
		r.store.SetToken(tok.AccessToken, tok.ExpiresIn)
		expiresIn = tok.ExpiresIn
		return nil
	})

	if r.recorder != nil {
		if recErr := r.recorder.RecordRefresh(ctx, expiresIn, err); recErr != nil {
			r.logger.Warn("failed to record token refresh", "error", recErr)
		}
	}

	if err != nil {
		return fmt.Errorf("token refresh: %w", err)
	}
	r.logger.Debug("access token refreshed", "token_url", r.endpoint.TokenURL, "expires_in", expiresIn)
	return nil
}

// EnsureFresh refreshes only when the stored token is stale.
func (r *TokenRefresher) EnsureFresh(ctx context.Context) error {
	if r.store.IsFresh() {
		return nil
	}
	return r.Refresh(ctx)
}
