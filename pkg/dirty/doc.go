// Package dirty implements the Dirty Tracker component (C2): per-node
// dirty state with a priority level, transitive mark-with-dependents
// propagation along a borrowed dependency graph, and a region sub-API for
// UI-invalidation queries.
//
// # Monotonic Upgrade
//
// Marking a node at level L never lowers its stored level: the new level
// is max(old, L). A Critical mark survives a subsequent Normal mark until
// the node is cleared.
//
// # Auto-Registration
//
// spec.md §9 leaves auto-registration on Mark as an open question; this
// package picks auto-register (a Mark on an unregistered id creates state
// at the marked level) as the default, with Config.StrictMode available
// to switch to the alternative documented behavior: Mark on an
// unregistered id returns ErrUnknownNode.
//
// # Thread Safety
//
// One sync.RWMutex guards all per-node and per-region state, matching the
// coarse per-component lock discipline used throughout this module.
package dirty
