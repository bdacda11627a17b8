package dirty

import (
	"time"

	"github.com/avnodegraph/core/pkg/types"
)

// nodeState is the per-node record backing the dirty tracker's public
// views: the fields spec.md §3 assigns to Dirty State (dirty_level,
// last_modified_at, last_evaluated_at, registered_at) plus the is_dirty flag.
type nodeState struct {
	id              types.NodeID
	isDirty         bool
	level           types.DirtyLevel
	lastModifiedAt  time.Time
	lastEvaluatedAt time.Time
	registeredAt    time.Time
}

// Snapshot is a read-only view of one node's dirty-tracker bookkeeping.
type Snapshot struct {
	ID              types.NodeID
	IsDirty         bool
	Level           types.DirtyLevel
	LastModifiedAt  time.Time
	LastEvaluatedAt time.Time
	RegisteredAt    time.Time
}

func (s nodeState) snapshot() Snapshot {
	return Snapshot{
		ID:              s.id,
		IsDirty:         s.isDirty,
		Level:           s.level,
		LastModifiedAt:  s.lastModifiedAt,
		LastEvaluatedAt: s.lastEvaluatedAt,
		RegisteredAt:    s.registeredAt,
	}
}

// SuccessorsFn computes the transitive successor set of a node as of the
// current graph snapshot. It decouples pkg/dirty from pkg/graph's
// concrete type so MarkWithDependents can be grounded on whatever graph
// view the caller borrows (spec.md §4.2: "computed with the current graph
// snapshot; changes to the graph after the call have no retroactive
// effect").
type SuccessorsFn func(id types.NodeID) []types.NodeID
