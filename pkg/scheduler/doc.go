// Package scheduler implements the A/V Queue Scheduler component (C5):
// two priority queues (audio, visual) drained once per frame under an
// adaptive batch size, with priority-ranked backpressure once the
// combined queue reaches its configured depth ceiling.
package scheduler
