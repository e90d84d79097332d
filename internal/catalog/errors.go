package catalog

import (
	"context"
	"errors"
	"fmt"

	"uicatalog/internal/source"
)

// NotFoundError reports a component name that matches no enumerated record.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Component '%s' not found", e.Name)
}

// Unwrap lets errors.Is(err, source.ErrNotFound) hold.
func (e *NotFoundError) Unwrap() error { return source.ErrNotFound }

var (
	// ErrResourceNotFound reports a resource URI that resolves to nothing.
	ErrResourceNotFound = fmt.Errorf("resource %w", source.ErrNotFound)

	// ErrUnknownProject reports a project name missing from the registry.
	ErrUnknownProject = errors.New("unknown project")

	// ErrInvalidArgument reports a malformed operation argument.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ErrorResult is the document returned in place of a result when an
// operation fails.
type ErrorResult struct {
	Error string `json:"error"`
}

// Failure converts err into an ErrorResult. Excluded paths read exactly like
// missing ones, and a deadline reads as a timeout.
func Failure(err error) ErrorResult {
	var (
		notFound  *NotFoundError
		rateLimit *source.RateLimitError
	)
	switch {
	case err == nil:
		return ErrorResult{}
	case errors.As(err, &notFound):
		return ErrorResult{Error: notFound.Error()}
	case errors.Is(err, ErrResourceNotFound):
		return ErrorResult{Error: "Resource not found"}
	case errors.As(err, &rateLimit):
		return ErrorResult{Error: rateLimit.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorResult{Error: "request timed out: " + err.Error()}
	}
	return ErrorResult{Error: err.Error()}
}

// Respond returns v, or the ErrorResult for err when err is non-nil.
func Respond(v any, err error) any {
	if err != nil {
		return Failure(err)
	}
	return v
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
