// Package telemetry provides OpenTelemetry integration for the core: a
// Prometheus-backed meter for evaluation-pass and scheduler metrics, and
// a tracer for per-pass/per-node spans. spec.md §6 describes the core's
// own pull-based statistics methods (cache.Statistics, etc.); this
// package is the optional collaborator that also exports them — and
// span/event telemetry — through the OpenTelemetry SDK, matching how the
// out-of-scope "telemetry transport" collaborator in spec.md §1 is
// expected to be wired.
package telemetry
