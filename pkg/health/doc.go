// Package health provides health check and readiness probe functionality.
// It enables monitoring of service health with support for:
//   - Liveness probes to detect if the service is running
//   - Readiness probes to detect if the service can handle requests
//   - Custom health checks for dependencies
//   - HTTP handlers for health endpoints
//
// CacheHitRateCheck, DirtyBacklogCheck and QueueDepthCheck wrap the
// memoization cache, dirty tracker and scheduler queues as CheckFuncs, so
// the evaluation core's internal pressure points (low cache effectiveness,
// a growing dirty backlog, a saturated queue) surface through the same
// readiness probe a deployment already polls.
package health
