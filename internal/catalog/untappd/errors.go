package untappd

import (
	"errors"
	"fmt"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound    = errors.New("untappd: not found")
	ErrRateLimited = errors.New("untappd: rate limited by server")
	ErrServer      = errors.New("untappd: server error")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op    string // Operation: "search", "details"
	Query string // Search query or page URL
	Err   error
}

func (e *Error) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("untappd %s [%s]: %v", e.Op, e.Query, e.Err)
	}
	return fmt.Sprintf("untappd %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, query string, err error) error {
	return &Error{Op: op, Query: query, Err: err}
}
