package types

import "time"

// EventKind distinguishes the two event families the scheduler accepts.
type EventKind string

const (
	// EventKindAudio marks an audio event (spec.md §3 "Event").
	EventKindAudio EventKind = "audio"
	// EventKindVisual marks a visual parameter update.
	EventKindVisual EventKind = "visual"
)

// Event is a single audio or visual item accepted by the scheduler. Audio
// events additionally carry Intensity/Frequency; visual parameter updates
// carry ParamName/Value. A given Event populates only the fields relevant
// to its Kind.
type Event struct {
	Timestamp time.Time
	Priority  Priority
	Kind      EventKind

	// Audio-only fields.
	Intensity float64
	Frequency float64

	// Visual-only fields.
	ParamName string
	Value     interface{}

	// Payload is an opaque, kind-agnostic carrier for anything the host
	// wants to thread through to its handler unmodified.
	Payload interface{}

	// sequence disambiguates FIFO order for events with identical
	// Timestamp; assigned by the scheduler at enqueue time.
	sequence uint64
}

// Sequence returns the scheduler-assigned enqueue sequence number, used to
// break FIFO ties within a priority class. Zero before the event is
// enqueued.
func (e Event) Sequence() uint64 { return e.sequence }

// WithSequence returns a copy of e carrying the given sequence number.
// Exported so pkg/scheduler (a separate package) can stamp events without
// needing an unexported field setter.
func (e Event) WithSequence(seq uint64) Event {
	e.sequence = seq
	return e
}
