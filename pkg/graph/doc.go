// Package graph implements the Dependency Graph component (C1) of the
// incremental evaluation core: a directed acyclic graph of node ids, with
// predecessor/successor queries, cycle-safe edge insertion, and
// deterministic topological ordering.
//
// # Overview
//
// An edge (from → to) means "from depends on to": to must be evaluated
// before from. The graph stores adjacency as two maps — predecessors and
// successors — for O(1) amortized edge operations and O(deg) neighbor
// enumeration.
//
// # Cycle Detection
//
// add_edge checks whether from is reachable from to in the pre-insertion
// graph via a bounded DFS probe; if so, the edge would close a cycle and
// the call fails without mutating state.
//
// # Deterministic Ordering
//
// topological_order breaks ties between simultaneously-ready nodes using a
// locale-stable collation key (golang.org/x/text/collate) rather than raw
// byte comparison, so repeated calls against an unchanged graph return the
// same sequence regardless of the process's locale.
//
// # Thread Safety
//
// One sync.RWMutex guards the whole graph. Mutations take the write lock
// for the duration of the call; queries take the read lock.
package graph
