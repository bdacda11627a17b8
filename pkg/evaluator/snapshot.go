package evaluator

import (
	"fmt"
	"time"

	"github.com/avnodegraph/core/pkg/cache"
	"github.com/avnodegraph/core/pkg/dirty"
	"github.com/avnodegraph/core/pkg/graph"
	"github.com/avnodegraph/core/pkg/types"
)

// snapshotVersion is the current Snapshot format. Restore rejects a
// snapshot carrying any other value.
const snapshotVersion = "1"

// Snapshot captures everything needed to reconstruct an evaluator's
// collaborators' state: the registered node ids, the dependency edges
// between them, each node's dirty-tracker bookkeeping, and the
// memoization cache's live entries. It does not capture the types.Node
// capability objects themselves (functions are not serializable); the
// caller must re-register the same nodes with RegisterNode before
// calling Restore.
//
// This is an explicit, host-invoked capture, not automatic persistence
// across process restarts: the host decides whether, where, and how long
// to keep the bytes.
type Snapshot struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	Nodes []types.NodeID `json:"nodes"`
	Edges []graph.Edge   `json:"edges"`

	DirtyState []dirty.Snapshot `json:"dirty_state"`
	CacheState []cache.Entry    `json:"cache_state"`
}

// Snapshot captures the current state of e's graph, dirty tracker, and
// cache. It does not itself register or unregister any node.
func (e *Evaluator) Snapshot() *Snapshot {
	e.nodesMu.RLock()
	nodeIDs := make([]types.NodeID, 0, len(e.nodes))
	for id := range e.nodes {
		nodeIDs = append(nodeIDs, id)
	}
	e.nodesMu.RUnlock()

	dirtyState := make([]dirty.Snapshot, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if s, ok := e.tracker.State(id); ok {
			dirtyState = append(dirtyState, s)
		}
	}

	return &Snapshot{
		Version:    snapshotVersion,
		CreatedAt:  time.Now(),
		Nodes:      nodeIDs,
		Edges:      e.graph.Edges(),
		DirtyState: dirtyState,
		CacheState: e.cache.Entries(),
	}
}

// Restore replays snap's dirty state and cache entries onto e's
// collaborators. Every node and edge in snap must already be registered
// with e (via RegisterNode/AddDependency) before calling Restore; a node
// id in snap that e does not know about is an error, since there is no
// types.Node capability object to attach it to.
func (e *Evaluator) Restore(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("evaluator: snapshot is nil")
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("evaluator: unsupported snapshot version %q (want %q)", snap.Version, snapshotVersion)
	}

	for _, id := range snap.Nodes {
		if _, ok := e.lookupNode(id); !ok {
			return fmt.Errorf("%w: snapshot references node %s, which is not registered", ErrCorruptGraph, id)
		}
	}

	for _, s := range snap.DirtyState {
		if s.IsDirty {
			if err := e.tracker.Mark(s.ID, s.Level); err != nil {
				return fmt.Errorf("evaluator: restoring dirty state for %s: %w", s.ID, err)
			}
		} else {
			e.tracker.Clear(s.ID)
		}
	}

	e.cache.RestoreEntries(snap.CacheState)
	return nil
}
