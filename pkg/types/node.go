package types

import "time"

// NodeID is an opaque, immutable node identifier. It is hashable and
// comparable by value; no total order is required of callers, though
// graph and scheduler packages impose a deterministic tie-break order
// internally (see pkg/graph).
type NodeID string

// String returns the identifier's textual form.
func (id NodeID) String() string {
	return string(id)
}

// Result is the opaque value produced by a successful Evaluate call. The
// core never inspects it; it is passed through to the memoization cache
// and back to the host unchanged.
type Result interface{}

// Node is the capability a host must supply for every node registered in
// the graph. Signature and Evaluate are called only by pkg/evaluator, in
// that order, never concurrently for the same node within one pass.
type Node interface {
	// ID returns the node's identifier. Must be stable for the lifetime
	// of the node.
	ID() NodeID

	// Signature returns a structural fingerprint of the node's current
	// inputs. Must be pure and deterministic: calling it twice without an
	// intervening input change must return equal signatures.
	Signature() NodeSignature

	// Evaluate performs the node's computation and returns an opaque
	// result or a descriptive error. Must not re-enter the core (no
	// calls back into graph, dirty, cache, or evaluator from within
	// Evaluate); behavior is undefined if it does.
	Evaluate() (Result, error)
}

// NodeState is a plain-value view of a node's bookkeeping fields for callers
// that just want a snapshot. Nothing in this module fills it in: pkg/dirty
// reports IsDirty through Tracker.IsDirty, and pkg/evaluator keeps no
// per-node IsEvaluated or LastEvaluatedAt record.
type NodeState struct {
	ID              NodeID
	IsDirty         bool
	IsEvaluated     bool
	LastEvaluatedAt time.Time
}
