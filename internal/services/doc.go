// Package services implements the Spotify Web API playback client.
//
// # Components
//
//   - [Executor] : performs one request through a [transport.Transport] into a single bounded response buffer
//   - [TokenRefresher] : the OAuth2 refresh-token grant, also usable as an [oauth2.TokenSource]
//   - [SpotifyPlayer] : the [Player] facade composed from the two
//
// # Call template
//
// Every [SpotifyPlayer] operation holds the player mutex, ensures a fresh token, executes, then maps the
// buffered body with package mapper. A response carrying "The access token expired" clears the
// credential store, refreshes, and retries the call exactly once.
//
// Write operations only need a 2xx status. Their bodies are inspected solely for an API error object.
//
// # Errors
//
// Failures are returned, never logged and dropped:
//   - [shared.ErrValidation] : bad input caught before any network call
//   - [shared.ErrTransport] : open/perform/read failure, [shared.ErrTimeout], [shared.ErrResponseTooLarge]
//   - [shared.ErrAuth] : [shared.ErrRemoteRejected] or [shared.ErrMalformedResponse] from the token endpoint
//   - [shared.ErrMapping] : invalid JSON, a missing field, or an [mapper.APIError]
package services
