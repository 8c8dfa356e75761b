package clients

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by torrent client adapters.
var (
	// ErrInvalidMagnet is returned when the input carries no 40-hex info hash.
	ErrInvalidMagnet = errors.New("magnet link has no valid info hash")

	// ErrUnknownClientType is returned by New for an unsupported client type.
	ErrUnknownClientType = errors.New("unknown client type")

	// ErrAuthFailed is returned when the backend rejects the credentials.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrTorrentNotFound is returned when the backend does not know a hash.
	ErrTorrentNotFound = errors.New("torrent not found")
)

// APIError represents an unexpected response from a torrent client.
type APIError struct {
	Client     string
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: API error (status %d): %s", e.Client, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: API error: %s", e.Client, e.Message)
}

// IsUnauthorized returns true if the error is due to authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Unwrap lets errors.Is match ErrAuthFailed for 401/403 responses.
func (e *APIError) Unwrap() error {
	if e.IsUnauthorized() {
		return ErrAuthFailed
	}
	return nil
}
