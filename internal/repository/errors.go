package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when an optimistic update loses the
	// race against a concurrent writer.
	ErrVersionConflict = errors.New("record was modified concurrently")
	// ErrSessionFull is returned when a guarded participant increment
	// would exceed the session capacity.
	ErrSessionFull = errors.New("session is at capacity")
)
