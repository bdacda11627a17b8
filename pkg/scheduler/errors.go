package scheduler

import "errors"

// ErrQueueFull is returned by QueueAudio/QueueVisual when the combined
// pending count is at MaxQueueDepth and the incoming event's priority
// could not displace anything queued below it (see the backpressure rule
// documented on Scheduler.admit).
var ErrQueueFull = errors.New("scheduler: queue full")
