package source

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound reports a path that does not resolve to an artifact.
	ErrNotFound = errors.New("not found")

	// ErrExcluded reports a path blocked by the security policy. It wraps
	// ErrNotFound and carries the same message.
	ErrExcluded = fmt.Errorf("%w", ErrNotFound)

	// ErrUnsupportedVersion reports a version the backend cannot serve.
	ErrUnsupportedVersion = errors.New("version not supported by this source")
)

// RateLimitError is returned when the remote API refuses a request because
// the caller exhausted its quota.
type RateLimitError struct {
	Reset         time.Time
	Authenticated bool
}

func (e *RateLimitError) Error() string {
	msg := "GitHub API rate limit exceeded"
	if !e.Reset.IsZero() {
		msg += fmt.Sprintf(" (resets at %s)", e.Reset.UTC().Format(time.RFC3339))
	}
	if !e.Authenticated {
		msg += "; set a GitHub token (github.token, GITHUB_TOKEN or `uicatalog token set`) to raise the limit"
	}
	return msg
}

// UpstreamError carries an unexpected response from a backing store.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return "upstream error: " + e.Message
	}
	return fmt.Sprintf("upstream error (status %d): %s", e.Status, e.Message)
}

func notFound(p string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, p)
}

func excluded(p string) error {
	return fmt.Errorf("%w: %s", ErrExcluded, p)
}
