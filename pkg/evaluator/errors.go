package evaluator

import (
	"errors"

	"github.com/avnodegraph/core/pkg/types"
)

// Sentinel errors for evaluation-pass operations.
var (
	// ErrDependencyNotEvaluated is returned (and aborts the pass) when a
	// node is about to be evaluated but one of its predecessors, per the
	// topological order C1 produced, has not itself been marked evaluated
	// yet. The order C1 produces should make this impossible; hitting it
	// indicates a bug in the graph or the caller's use of it.
	ErrDependencyNotEvaluated = errors.New("evaluator: dependency not evaluated")

	// ErrCorruptGraph is returned when an edge references a node id the
	// graph has no record of, which TopologicalOrder should never produce.
	ErrCorruptGraph = errors.New("evaluator: corrupt graph")

	// ErrGraphMutatedDuringEvaluation is returned when a cycle is
	// discovered mid-pass, only reachable via concurrent graph mutation
	// racing the pass (see pkg/graph's lock-ordering contract).
	ErrGraphMutatedDuringEvaluation = errors.New("evaluator: graph mutated during evaluation")
)

// NodeEvaluationError wraps a single node's evaluate() failure with the
// node id it occurred against. Per-node failures are recovered locally
// (they do not abort the pass) and collected on EvaluationResult.Failures
// rather than returned from Evaluate* directly.
type NodeEvaluationError struct {
	NodeID types.NodeID
	Err    error
}

func (e *NodeEvaluationError) Error() string {
	return "evaluator: node " + e.NodeID.String() + " evaluation failed: " + e.Err.Error()
}

func (e *NodeEvaluationError) Unwrap() error {
	return e.Err
}
