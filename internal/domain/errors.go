package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrBackendUnavailable is returned when no backend target produced a successful search
	ErrBackendUnavailable = errors.New("search backend unavailable")

	// ErrStaleSearch is returned when a newer search started before this one answered
	ErrStaleSearch = errors.New("search superseded by a newer request")

	// ErrItemNotFound is returned when a key is neither stored nor part of the current results
	ErrItemNotFound = errors.New("item not found")

	// ErrUnknownSource is returned for a source name outside the fixed enumeration
	ErrUnknownSource = errors.New("unknown source")

	// ErrOCRFailure is returned when the OCR backend rejects or fails a request
	ErrOCRFailure = errors.New("OCR request failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrPreferencesUnavailable is returned when the local preference store cannot be written
	ErrPreferencesUnavailable = errors.New("preferences store unavailable")
)

// BackendError describes one failed call to a backend target
type BackendError struct {
	Target     string
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("Backend responded with %d", e.StatusCode)
	}
	return "Backend unavailable"
}
