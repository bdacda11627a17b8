// Package logging provides structured logging with context propagation,
// built on log/slog.
//
// # Levels
//
// debug, info, warn, error — unrecognized strings fall back to info.
//
// # Context Propagation
//
// WithContext stashes a *Logger in a context.Context; FromContext
// retrieves it, falling back to a default-configured logger if none was
// stashed.
//
// # Observability Integration
//
// Adapter wraps a *Logger to satisfy pkg/observer's Logger interface
// (Debug/Info/Warn/Error taking a message plus a field map), so a
// ConsoleObserver can delegate to the same structured logger the rest of
// the module uses.
package logging
