package trakt

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DefaultRetryAfterSeconds is used when a 429 carries no usable Retry-After.
const DefaultRetryAfterSeconds = 60

// MaxRetryAfterSeconds caps any wait Trakt asks for.
const MaxRetryAfterSeconds = 24 * 60 * 60

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid trakt configuration")
	// ErrUnauthorized indicates the client id or access token was rejected
	ErrUnauthorized = errors.New("unauthorized: invalid client id or access token")
	// ErrServer indicates a 5xx response from Trakt
	ErrServer = errors.New("trakt server error")
	// ErrNetwork indicates the request never got a response
	ErrNetwork = errors.New("trakt network error")
)

// RateLimitError is returned when Trakt answers 429 Too Many Requests, or
// when a shared Cooldown is still active.
type RateLimitError struct {
	Message           string
	StatusCode        int
	RetryAfterSeconds int
}

// NewRateLimitError returns a rate limit condition with the default wait.
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{
		Message:           message,
		StatusCode:        http.StatusTooManyRequests,
		RetryAfterSeconds: DefaultRetryAfterSeconds,
	}
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("trakt rate limit exceeded: %s (retry after %ds)", e.Message, e.RetryAfterSeconds)
}

// Wait returns how long the caller should wait before retrying, capped at
// MaxRetryAfterSeconds.
func (e *RateLimitError) Wait() time.Duration {
	seconds := min(max(e.RetryAfterSeconds, 0), MaxRetryAfterSeconds)
	return time.Duration(seconds) * time.Second
}

// APIError represents a Trakt API error
type APIError struct {
	StatusCode int
	Message    string
	Body       string
	kind       error
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("trakt API error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns ErrUnauthorized or ErrServer when the status calls for it.
func (e *APIError) Unwrap() error {
	return e.kind
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsServerError checks if the error is a 5xx response
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

func newAPIError(status int, body []byte) *APIError {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	e := &APIError{StatusCode: status, Message: msg, Body: string(body)}
	switch {
	case e.IsUnauthorized():
		e.kind = ErrUnauthorized
	case e.IsServerError():
		e.kind = ErrServer
	}
	return e
}

// parseRetryAfter reads a Retry-After header given either as delta seconds or
// as an HTTP date. Missing or unreadable values yield the default. Dates in
// the past yield one second.
func parseRetryAfter(value string, now time.Time) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRetryAfterSeconds
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return DefaultRetryAfterSeconds
		}
		return min(seconds, MaxRetryAfterSeconds)
	}

	if at, err := http.ParseTime(value); err == nil {
		wait := at.Sub(now).Seconds()
		if wait < 1 {
			return 1
		}
		return int(math.Ceil(min(wait, MaxRetryAfterSeconds)))
	}

	return DefaultRetryAfterSeconds
}

// Outcome is the classification of a Trakt call.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeRateLimited
	OutcomeUnauthorized
	OutcomeServer
	OutcomeNetwork
	OutcomeFailed
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeServer:
		return "server"
	case OutcomeNetwork:
		return "network"
	default:
		return "failed"
	}
}

// Retryable reports whether retrying the same call may succeed.
func (o Outcome) Retryable() bool {
	return o == OutcomeRateLimited || o == OutcomeServer || o == OutcomeNetwork
}

// Classify maps an error returned by Client to an Outcome. A nil error is
// OutcomeOK.
func Classify(err error) Outcome {
	if err == nil {
		return OutcomeOK
	}

	var rl *RateLimitError
	switch {
	case errors.As(err, &rl):
		return OutcomeRateLimited
	case errors.Is(err, ErrUnauthorized):
		return OutcomeUnauthorized
	case errors.Is(err, ErrServer):
		return OutcomeServer
	case errors.Is(err, ErrNetwork):
		return OutcomeNetwork
	default:
		return OutcomeFailed
	}
}
