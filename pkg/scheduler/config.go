package scheduler

// Config controls frame pacing, queue depth, and the adaptive batch size
// of the A/V Queue Scheduler.
type Config struct {
	// TargetFrameRate is F_t, frames per second. The frame budget T used
	// by the adaptive batch size rule is 1/TargetFrameRate.
	TargetFrameRate uint16

	// MaxQueueDepth is Q_max: the combined audio+visual pending count at
	// which backpressure and dropping rules engage.
	MaxQueueDepth uint32

	// InitialBatchSize is B's starting value before any frame has adapted it.
	InitialBatchSize uint16

	// MinBatchSize and MaxBatchSize bound B's adaptive range (B_min, B_max).
	MinBatchSize uint16
	MaxBatchSize uint16
}

// Default returns the scheduler's out-of-the-box configuration: 60fps
// target, a queue depth of 1024, an initial batch of 64 with the
// specification's default bounds of [8, 1024].
func Default() Config {
	return Config{
		TargetFrameRate:  60,
		MaxQueueDepth:    1024,
		InitialBatchSize: 64,
		MinBatchSize:     8,
		MaxBatchSize:     1024,
	}
}
