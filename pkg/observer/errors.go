package observer

import "errors"

// Sentinel errors for observer registration.
var (
	// ErrObserverAlreadyRegistered is reserved for managers that enforce
	// uniqueness; the default Manager allows duplicate registration.
	ErrObserverAlreadyRegistered = errors.New("observer: already registered")
)
