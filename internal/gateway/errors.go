package gateway

import (
	"errors"
	"fmt"
)

// Sentinel errors callers branch on to decide recoverability.
var (
	// ErrSessionNotFound means the backend no longer knows the session id.
	// On verify this is a recoverable signal (unlink and recreate lazily),
	// not something to show the user.
	ErrSessionNotFound = errors.New("session not found")
)

// APIError is a non-2xx response from the backend, distinct from a
// transport-level failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend returned http %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned http %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a 404-class backend rejection or the
// ErrSessionNotFound sentinel.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrSessionNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
