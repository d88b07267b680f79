package cache

import "errors"

// Sentinel errors for cache setup.
var (
	// ErrUnknownBackend is returned by [Open] for a backend name it does not
	// recognize.
	ErrUnknownBackend = errors.New("unknown cache backend")

	// ErrUnavailable is returned when a remote backend cannot be reached.
	ErrUnavailable = errors.New("cache backend unavailable")
)
