// Package evaluator drives topological evaluation passes over nodes
// tracked by pkg/graph and pkg/dirty, memoizing successful results in
// pkg/cache. It implements evaluate_all, evaluate_incremental, and
// evaluate_node, in that priority order of how much of the graph each
// one walks.
//
// Each pass is tagged with a google/uuid execution id, carried on
// EvaluationResult and every observer.Event the pass emits, so a host can
// correlate logs, metrics, and events back to one evaluate_all/
// evaluate_incremental/evaluate_node call.
package evaluator
