package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized marks a 401/403 answer from the backend.
var ErrUnauthorized = errors.New("session rejected by backend")

// RequestError is a labelled backend call failure.
//
// Status is zero when no HTTP response was received.
type RequestError struct {
	Status  int
	Label   string
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Label, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: status %d: %v", e.Label, e.Status, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Label, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Label, e.Status)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err came from a 401/403 answer.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status
	}
	return 0
}
