package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrRequestFailed         = errors.New("request failed")
	ErrUnavailable           = errors.New("server unavailable")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("not found")
	ErrUnexpectedResponse    = errors.New("unexpected response")
	ErrLocalDataNotAvailable = errors.New("local data unavailable")
)

// RequestError is returned for every non-2xx response.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *RequestError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func invalidInput(field string) error {
	return fmt.Errorf("%w: %s required", ErrInvalidInput, field)
}
