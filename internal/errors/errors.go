package errors

import (
	"errors"
	"fmt"
	"time"
)

// Common error types for the session gateway. Every failure that crosses a
// package boundary maps onto one of these sentinels so callers branch with
// errors.Is rather than string matching.
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// Provider outcomes
	ErrInvalidGrant = errors.New("invalid grant")
	ErrTransient    = errors.New("transient provider failure")
	ErrRateLimited  = errors.New("provider rate limited")
	ErrProtocol     = errors.New("protocol error")

	// General errors
	ErrNotFound    = errors.New("not found")
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// RateLimitedError carries the provider's advertised backoff alongside the
// ErrRateLimited sentinel. A RetryAfter of zero means the provider gave no hint.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider rate limited, retry after %s", e.RetryAfter)
	}
	return "provider rate limited"
}

// Unwrap lets errors.Is(err, ErrRateLimited) match through the struct.
func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

// IsTerminal reports whether err is a failure class that cannot be resolved
// by retrying and requires session termination.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrInvalidGrant) ||
		errors.Is(err, ErrProtocol) ||
		errors.Is(err, ErrSessionExpired)
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
