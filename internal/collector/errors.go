package collector

import "errors"

var (
	// ErrFixtureNotFound is returned when the mandatory fixture lookup
	// fails or returns an empty response; this aborts the whole
	// collection, unlike every other section which degrades to absent.
	ErrFixtureNotFound = errors.New("fixture not found")
	// ErrTimeout is returned when the collection's wall-clock budget
	// elapses before every call completes.
	ErrTimeout = errors.New("collection timed out")
)
