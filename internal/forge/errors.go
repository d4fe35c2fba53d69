package forge

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for forge package.
var (
	// ErrNotFound indicates the repository, ref or path does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the forge rejected the credentials (401/403).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the forge refused the request due to rate limits.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransport indicates the request never got a response.
	ErrTransport = errors.New("transport failure")

	// ErrNotDirectory indicates a directory listing was requested for a file.
	ErrNotDirectory = errors.New("not a directory")
)

// Error describes a failed forge call.
type Error struct {
	Op         string // operation, e.g. "get repository"
	Owner      string
	Repo       string
	Path       string // ref or path, when relevant
	StatusCode int    // HTTP status, 0 if none
	Err        error  // underlying error
}

// Error returns a formatted error message.
func (e *Error) Error() string {
	target := e.Owner + "/" + e.Repo
	if e.Path != "" {
		target += ":" + e.Path
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s: status code %d: %v", e.Op, target, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, target, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps an HTTP status to a sentinel, wrapping cause.
func classify(status int, cause error) error {
	var sentinel error
	switch {
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	case status == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case status == http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	case status == http.StatusForbidden:
		if cause != nil && strings.Contains(strings.ToLower(cause.Error()), "rate limit") {
			sentinel = ErrRateLimited
		} else {
			sentinel = ErrUnauthorized
		}
	case status == 0:
		sentinel = ErrTransport
	}
	if sentinel == nil {
		return cause
	}
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %v", sentinel, cause)
}

// IsNotFound checks if an error is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if an error is ErrUnauthorized.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited checks if an error is ErrRateLimited.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsTransport checks if an error is ErrTransport.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// AsError checks if an error is a forge Error and extracts it.
func AsError(err error, target **Error) bool {
	var forgeErr *Error
	if errors.As(err, &forgeErr) {
		*target = forgeErr
		return true
	}
	return false
}

// Describe renders err as a single human-readable line suitable for a tool's
// status message, adding a short hint for the common failure classes.
func Describe(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	switch {
	case IsNotFound(err):
		return msg + " (check owner, repo and path)"
	case IsRateLimited(err):
		return msg + " (forge rate limit reached, retry later)"
	case IsUnauthorized(err):
		return msg + " (set GH_TOKEN or GITHUB_TOKEN for private repositories)"
	case IsTransport(err):
		return msg + " (network error, check connectivity to the forge)"
	}
	return msg
}
