// Package credentials holds the Spotify client registration and the current access token.
//
// A [Store] is pure state plus a clock read. It performs no I/O; the token refresher
// in package services is the only writer of the access token.
package credentials

import (
	"math"
	"time"

	"golang.org/x/oauth2"
)

// Clock reports the current time. Tests substitute an advanceable clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Store owns the client id, client secret, refresh token, and the current access token with its expiry.
//
// Store is not safe for concurrent use; callers serialize access.
type Store struct {
	clientID     string
	clientSecret string
	refreshToken string

	accessToken string
	expiresAt   time.Time
	hasToken    bool

	clock Clock
}

// New creates a Store. A nil clock uses [SystemClock].
func New(clientID, clientSecret, refreshToken string, clock Clock) *Store {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Store{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		clock:        clock,
	}
}

func (s *Store) ClientID() string     { return s.clientID }
func (s *Store) ClientSecret() string { return s.clientSecret }
func (s *Store) RefreshToken() string { return s.refreshToken }

// AccessToken returns the stored access token, or "" when none is held.
func (s *Store) AccessToken() string {
	return s.accessToken
}

// IsFresh reports whether a token is held and the clock is strictly before its expiry.
func (s *Store) IsFresh() bool {
	return s.hasToken && s.clock.Now().Before(s.expiresAt)
}

// maxExpiresIn is the largest lifetime, in seconds, a [time.Duration] can hold.
const maxExpiresIn = math.MaxInt64 / int64(time.Second)

// SetToken stores token, expiring expiresIn seconds from now. Lifetimes past [maxExpiresIn] are clamped.
func (s *Store) SetToken(token string, expiresIn int64) {
	expiresIn = min(max(expiresIn, 0), maxExpiresIn)
	s.accessToken = token
	s.expiresAt = s.clock.Now().Add(time.Duration(expiresIn) * time.Second)
	s.hasToken = true
}

// Clear drops the access token so the next freshness check fails.
func (s *Store) Clear() {
	s.accessToken = ""
	s.expiresAt = time.Time{}
	s.hasToken = false
}

// ExpiresAt returns the expiry instant, zero when no token is held.
func (s *Store) ExpiresAt() time.Time {
	return s.expiresAt
}

// Remaining returns how long the current token stays fresh, zero when stale.
func (s *Store) Remaining() time.Duration {
	if !s.IsFresh() {
		return 0
	}
	return s.expiresAt.Sub(s.clock.Now())
}

// Token exposes the held access token as an [oauth2.Token]. It returns nil when no token is held.
func (s *Store) Token() *oauth2.Token {
	if !s.hasToken {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.accessToken,
		TokenType:    "Bearer",
		RefreshToken: s.refreshToken,
		Expiry:       s.expiresAt,
	}
}
