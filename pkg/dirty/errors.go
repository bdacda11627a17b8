package dirty

import "errors"

// Sentinel errors for dirty-tracker operations.
var (
	// ErrUnknownNode is returned by Mark and its variants in StrictMode
	// when the target id has not been registered.
	ErrUnknownNode = errors.New("dirty: unknown node")
)
