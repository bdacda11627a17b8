package evaluator

import (
	"time"

	"github.com/avnodegraph/core/pkg/types"
)

// Kind identifies which entry point produced an EvaluationResult.
type Kind int

const (
	KindFull Kind = iota
	KindIncremental
	KindSingle
)

// String renders a Kind for logs, metric labels, and observer metadata.
func (k Kind) String() string {
	switch k {
	case KindFull:
		return "full"
	case KindIncremental:
		return "incremental"
	case KindSingle:
		return "single"
	default:
		return "unknown"
	}
}

// NodeDuration is the optional per-node timing detail attached to a result.
type NodeDuration struct {
	NodeID   types.NodeID
	Duration time.Duration
}

// EvaluationResult aggregates the outcome of one evaluation pass: a call
// to EvaluateAll, EvaluateIncremental, or EvaluateNode.
type EvaluationResult struct {
	// ExecutionID correlates this pass across observer events, metrics,
	// and any snapshot taken around it.
	ExecutionID string

	Kind Kind

	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration

	// EvaluatedCount is the number of nodes whose evaluate() succeeded
	// (cache hits and fresh evaluations both count).
	EvaluatedCount int
	// CachedCount is the subset of EvaluatedCount served from the cache
	// without invoking evaluate().
	CachedCount int
	// FailedCount is the number of nodes whose evaluate() returned an error
	// or whose opaque-blob parameters failed schema validation.
	FailedCount int

	// Failures carries one NodeEvaluationError per failed node, in the
	// order encountered.
	Failures []*NodeEvaluationError

	// NodeDurations is populated when the caller requests per-node timing;
	// nil otherwise.
	NodeDurations []NodeDuration

	// AllSucceeded is true iff FailedCount == 0 and the pass was not
	// aborted by a fatal error.
	AllSucceeded bool
}
