package mapper

import (
	"errors"
	"fmt"

	"github.com/desertthunder/spotbox/internal/models"
	"github.com/desertthunder/spotbox/internal/shared"
)

// ErrorKind classifies an API error message.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindTokenExpired
	KindBadAuth
)

func (k ErrorKind) String() string {
	switch k {
	case KindTokenExpired:
		return "token_expired"
	case KindBadAuth:
		return "bad_auth"
	default:
		return "other"
	}
}

// classifications is matched exactly, case-sensitively, against the error object's message.
var classifications = []struct {
	message string
	kind    ErrorKind
}{
	{"The access token expired", KindTokenExpired},
	{"Only valid bearer authentication supported", KindBadAuth},
	{"Invalid access token", KindBadAuth},
	{"No token provided", KindBadAuth},
}

// Classify maps a service error message onto an [ErrorKind]. Unknown messages are [KindOther].
func Classify(message string) ErrorKind {
	for _, c := range classifications {
		if c.message == message {
			return c.kind
		}
	}
	return KindOther
}

// APIError is an error object returned inside a response body.
type APIError struct {
	Kind    ErrorKind
	Message string
	Status  int
}

func newAPIError(message string, status int) *APIError {
	message = models.Truncate(message, models.MaxErrorMessageLen)
	return &APIError{Kind: Classify(message), Message: message, Status: status}
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%v (%s, status %d): %s", shared.ErrAPI, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%v (%s): %s", shared.ErrAPI, e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return shared.ErrAPI }

// IsTokenExpired reports whether err carries an [APIError] of kind [KindTokenExpired].
func IsTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == KindTokenExpired
}
