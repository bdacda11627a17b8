package dirty

import (
	"sync"
	"time"

	"github.com/avnodegraph/core/pkg/types"
)

// Tracker is the Dirty Tracker component (C2).
type Tracker struct {
	mu    sync.RWMutex
	cfg   Config
	nodes map[types.NodeID]*nodeState

	regions map[types.NodeID]types.Region
}

// New constructs a Tracker with the given configuration.
func New(cfg Config) *Tracker {
	return &Tracker{
		cfg:     cfg,
		nodes:   make(map[types.NodeID]*nodeState),
		regions: make(map[types.NodeID]types.Region),
	}
}

// Register creates dirty state for id at (dirty=true, level=Normal), the
// D1 invariant. Idempotent: registering an already-known id leaves its
// existing state untouched.
func (t *Tracker) Register(id types.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.registerLocked(id)
}

func (t *Tracker) registerLocked(id types.NodeID) *nodeState {
	if s, ok := t.nodes[id]; ok {
		return s
	}
	now := time.Now()
	s := &nodeState{
		id:             id,
		isDirty:        true,
		level:          types.DirtyNormal,
		lastModifiedAt: now,
		registeredAt:   now,
	}
	t.nodes[id] = s
	return s
}

// Unregister removes id's dirty state and its region, if any.
func (t *Tracker) Unregister(id types.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.nodes, id)
	delete(t.regions, id)
}

// Mark sets id dirty at the given level, applying the monotonic-upgrade
// rule (D3): the stored level becomes max(old, level), never a downgrade.
// In Config.StrictMode an unregistered id returns ErrUnknownNode; otherwise
// it is auto-registered first (spec.md §9's chosen default).
func (t *Tracker) Mark(id types.NodeID, level types.DirtyLevel) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.markLocked(id, level)
}

func (t *Tracker) markLocked(id types.NodeID, level types.DirtyLevel) error {
	s, ok := t.nodes[id]
	if !ok {
		if t.cfg.StrictMode {
			return ErrUnknownNode
		}
		s = t.registerLocked(id)
	}
	s.isDirty = true
	s.level = types.MaxDirtyLevel(s.level, level)
	s.lastModifiedAt = time.Now()
	return nil
}

// MarkBatch marks every id in ids at level, counting each id exactly once
// regardless of duplicates in the slice.
func (t *Tracker) MarkBatch(ids []types.NodeID, level types.DirtyLevel) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := make(map[types.NodeID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if err := t.markLocked(id, level); err != nil {
			return err
		}
	}
	return nil
}

// MarkWithDependents marks id and every transitive successor returned by
// successors(id) at level. The successor set is computed once, against
// the graph as it stands at call time; later graph mutations are not
// retroactively honored (spec.md §4.2).
func (t *Tracker) MarkWithDependents(id types.NodeID, level types.DirtyLevel, successors SuccessorsFn) error {
	dependents := successors(id)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.markLocked(id, level); err != nil {
		return err
	}
	for _, dep := range dependents {
		if err := t.markLocked(dep, level); err != nil {
			return err
		}
	}
	return nil
}

// Clear clears id's dirty flag and records last_evaluated_at. Idempotent
// (L3): clearing an already-clear or unregistered node is a no-op.
func (t *Tracker) Clear(id types.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked(id)
}

func (t *Tracker) clearLocked(id types.NodeID) {
	s, ok := t.nodes[id]
	if !ok {
		return
	}
	s.isDirty = false
	s.level = types.DirtyNone
	s.lastEvaluatedAt = time.Now()
}

// ClearBatch clears every id in ids.
func (t *Tracker) ClearBatch(ids []types.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, id := range ids {
		t.clearLocked(id)
	}
}

// ClearAll clears every registered node.
func (t *Tracker) ClearAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.nodes {
		t.clearLocked(id)
	}
}

// IsDirty reports id's current dirty flag. An unregistered id is not dirty.
func (t *Tracker) IsDirty(id types.NodeID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.nodes[id]
	return ok && s.isDirty
}

// DirtyNodes returns every currently-dirty node id, in no particular order.
func (t *Tracker) DirtyNodes() []types.NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]types.NodeID, 0, len(t.nodes))
	for id, s := range t.nodes {
		if s.isDirty {
			out = append(out, id)
		}
	}
	return out
}

// DirtyNodesByLevel returns every dirty node currently stored at exactly level.
func (t *Tracker) DirtyNodesByLevel(level types.DirtyLevel) []types.NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []types.NodeID
	for id, s := range t.nodes {
		if s.isDirty && s.level == level {
			out = append(out, id)
		}
	}
	return out
}

// DirtyCount returns the number of currently-dirty nodes.
func (t *Tracker) DirtyCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, s := range t.nodes {
		if s.isDirty {
			n++
		}
	}
	return n
}

// StaleDirtyNodes returns dirty nodes whose last_modified_at is older than maxAge.
func (t *Tracker) StaleDirtyNodes(maxAge time.Duration) []types.NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	now := time.Now()
	var out []types.NodeID
	for id, s := range t.nodes {
		if s.isDirty && now.Sub(s.lastModifiedAt) > maxAge {
			out = append(out, id)
		}
	}
	return out
}

// State returns a snapshot of id's bookkeeping, or false if unregistered.
func (t *Tracker) State(id types.NodeID) (Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.nodes[id]
	if !ok {
		return Snapshot{}, false
	}
	return s.snapshot(), true
}

// IsRegistered reports whether id has tracker state.
func (t *Tracker) IsRegistered(id types.NodeID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.nodes[id]
	return ok
}
