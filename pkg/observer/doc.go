// Package observer implements the observer pattern for evaluation-pass
// events: pass start/end and per-node start/success/failure. Observers
// receive notifications asynchronously and cannot influence or block an
// evaluation pass — a panicking observer is recovered and the rest of
// the registered observers still receive the event.
//
// # Built-in Observers
//
// NoOpObserver discards every event. ConsoleObserver logs each event
// through a Logger. Manager fans one event out to any number of
// registered observers, each notified in its own goroutine.
package observer
