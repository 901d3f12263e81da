package demo

import "errors"

var (
	// ErrSessionNotFound is returned for operations on an unknown
	// session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when creating a session whose id is
	// already registered.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionEnded is returned when dispatching work to a session
	// whose browser has been released.
	ErrSessionEnded = errors.New("session has ended")

	// ErrInvalidInput is returned for caller errors such as an empty
	// page list or a missing URL.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTooManySessions is returned when the concurrent session limit
	// is reached.
	ErrTooManySessions = errors.New("maximum number of sessions reached")
)
