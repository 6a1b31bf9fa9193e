package jobs

import (
	"context"
	"errors"
	"net"
)

// transientError marks a per-item failure worth retrying, e.g. a timeout
// from the embedding provider.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// fatalError aborts the whole job.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Transient wraps err so the runner retries the item up to max_retries.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// Fatal wraps err so the runner stops the job with status error.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// IsTimeout reports whether err stems from a deadline or a network timeout.
// Callers use it to decide between Transient and Fatal.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
