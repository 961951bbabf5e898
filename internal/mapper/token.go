package mapper

import (
	"fmt"

	"github.com/desertthunder/spotbox/internal/jsonx"
	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/shared"
)

// TokenResponse is the accepted part of a refresh-token grant response.
type TokenResponse struct {
	AccessToken string
	ExpiresIn   int64
}

// DecodeToken maps the token endpoint response.
//
// An error field, in either the OAuth string form or the Web API object form, is a
// [shared.RemoteRejectedError]. A success body must carry a non-empty access_token no longer
// than [models.MaxAccessTokenLen] and a non-negative integer expires_in, anything else is
// [shared.ErrMalformedResponse].
func DecodeToken(status int, body []byte) (TokenResponse, error) {
	root, err := jsonx.Parse(body)
	if err != nil {
		if !isSuccess(status) {
			return TokenResponse{}, &shared.StatusError{Status: status}
		}
		return TokenResponse{}, fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	if errNode := root.Get("error"); errNode.Exists() && !errNode.IsNull() {
		return TokenResponse{}, &shared.RemoteRejectedError{Message: rejectionMessage(root, errNode)}
	}
	if !isSuccess(status) {
		return TokenResponse{}, &shared.StatusError{Status: status}
	}

	token, ok := root.Get("access_token").String()
	if !ok || token == "" {
		return TokenResponse{}, fmt.Errorf("%w: access_token missing", shared.ErrMalformedResponse)
	}
	if len(token) > models.MaxAccessTokenLen {
		return TokenResponse{}, fmt.Errorf("%w: access_token exceeds %d bytes", shared.ErrMalformedResponse, models.MaxAccessTokenLen)
	}

	expiresIn, ok := root.Get("expires_in").Int()
	if !ok || expiresIn < 0 {
		return TokenResponse{}, fmt.Errorf("%w: expires_in missing or negative", shared.ErrMalformedResponse)
	}

	return TokenResponse{AccessToken: token, ExpiresIn: expiresIn}, nil
}

func rejectionMessage(root, errNode jsonx.Node) string {
	var msg string
	if code, ok := errNode.String(); ok {
		msg = code
		if desc, ok := root.Get("error_description").String(); ok && desc != "" {
			msg = code + ": " + desc
		}
	} else if m, ok := errNode.Get("message").String(); ok {
		msg = m
	}
	return models.Truncate(msg, models.MaxErrorMessageLen)
}
