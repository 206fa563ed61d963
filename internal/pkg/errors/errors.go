package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionClosed is returned when approve/cancel targets a review
	// session that is no longer pending.
	ErrSessionClosed = errors.New("review session already closed")
	// ErrSubmissionInFlight is returned when a second network submission
	// is attempted while one is still outstanding.
	ErrSubmissionInFlight = errors.New("submission already in flight")
)
