// Package errs defines the error taxonomy shared by the Slack and GitHub
// gateways and the scan pipeline.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth marks invalid or revoked credentials. Fatal: the run aborts.
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound marks a resource that no longer exists. Expected; callers
	// skip the item.
	ErrNotFound = errors.New("not found")

	// ErrTransient marks rate-limit and network failures. Per-item the
	// caller logs and skips; at connection setup it is fatal.
	ErrTransient = errors.New("transient I/O error")
)

// Auth wraps err as fatal credential failure.
func Auth(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrAuth, err)
}

// NotFound wraps err as an expected missing-resource failure.
func NotFound(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNotFound, err)
}

// Transient wraps err as a retryable I/O failure.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

func IsAuth(err error) bool      { return errors.Is(err, ErrAuth) }
func IsNotFound(err error) bool  { return errors.Is(err, ErrNotFound) }
func IsTransient(err error) bool { return errors.Is(err, ErrTransient) }
