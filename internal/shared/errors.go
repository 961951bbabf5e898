package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Input validation errors, raised before any network call
	ErrValidation      = fmt.Errorf("validation failed")
	ErrMissingArgument = fmt.Errorf("%w: missing required argument", ErrValidation)
	ErrInvalidArgument = fmt.Errorf("%w: invalid argument", ErrValidation)

	// Transport errors
	ErrTransport        = fmt.Errorf("transport failed")
	ErrTimeout          = fmt.Errorf("%w: operation timed out", ErrTransport)
	ErrResponseTooLarge = fmt.Errorf("%w: response exceeds buffer capacity", ErrTransport)
	ErrHTTPStatus       = fmt.Errorf("%w: unexpected http status", ErrTransport)

	// Authentication errors
	ErrAuth              = fmt.Errorf("authentication failed")
	ErrRemoteRejected    = fmt.Errorf("%w: refresh rejected by remote", ErrAuth)
	ErrMalformedResponse = fmt.Errorf("%w: malformed token response", ErrAuth)

	// Response mapping errors
	ErrMapping      = fmt.Errorf("response mapping failed")
	ErrInvalidJSON  = fmt.Errorf("%w: invalid json", ErrMapping)
	ErrMissingField = fmt.Errorf("%w: missing field", ErrMapping)
	ErrAPI          = fmt.Errorf("%w: api error", ErrMapping)

	// Service & storage errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")
)

// FieldError reports a required key that was absent or of the wrong type.
type FieldError struct {
	Key string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v %q", ErrMissingField, e.Key)
}

func (e *FieldError) Unwrap() error { return ErrMissingField }

// MissingField builds a [FieldError] for key.
func MissingField(key string) error {
	return &FieldError{Key: key}
}

// RemoteRejectedError carries the message the token endpoint returned with its error field.
type RemoteRejectedError struct {
	Message string
}

func (e *RemoteRejectedError) Error() string {
	if e.Message == "" {
		return ErrRemoteRejected.Error()
	}
	return fmt.Sprintf("%v: %s", ErrRemoteRejected, e.Message)
}

func (e *RemoteRejectedError) Unwrap() error { return ErrRemoteRejected }

// StatusError is a non-2xx response that carried no API error body.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d", ErrHTTPStatus, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrHTTPStatus }
