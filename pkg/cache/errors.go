package cache

import "errors"

// Sentinel errors for cache configuration.
var (
	// ErrInvalidMaxEntries is returned by NewConfig when MaxEntries is not positive.
	ErrInvalidMaxEntries = errors.New("cache: max entries must be positive")
)
