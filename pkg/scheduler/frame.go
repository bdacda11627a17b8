package scheduler

import "time"

// FrameStats summarizes a single ProcessFrame (or
// ProcessFrameWithOptimization) call.
type FrameStats struct {
	FrameNumber uint64

	AudioDrained  int
	VisualDrained int

	// Coalesced counts visual updates that were superseded by a
	// later-timestamped update to the same ParamName within this batch and
	// were dropped rather than delivered. Always zero for plain
	// ProcessFrame, which never coalesces.
	Coalesced int

	PendingAfter int

	// AvgLatency is the mean wall-clock time between an event's enqueue
	// timestamp and the moment this frame drained it.
	AvgLatency time.Duration

	// ProcessingMs is how long this ProcessFrame call itself took to run.
	ProcessingMs float64
}

// SyncEvent is broadcast on the scheduler's sync-event stream after every
// ProcessFrame, giving subscribers (such as an A/V sync monitor) a
// lightweight per-frame summary without needing the full FrameStats.
type SyncEvent struct {
	FrameNumber   uint64
	AudioDrained  int
	VisualDrained int

	// SyncAccuracy approximates how close the audio and visual drain
	// counts tracked each other this frame: 1.0 when equal, falling off
	// as the larger count outpaces the smaller one.
	SyncAccuracy float64
}

func syncAccuracy(audioDrained, visualDrained int) float64 {
	if audioDrained == 0 && visualDrained == 0 {
		return 1.0
	}
	larger := audioDrained
	smaller := visualDrained
	if smaller > larger {
		larger, smaller = smaller, larger
	}
	return float64(smaller) / float64(larger)
}
