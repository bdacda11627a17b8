package graph

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/avnodegraph/core/pkg/types"
)

// Graph is the Dependency Graph component (C1): a set of node ids and a
// set of directed edges (from → to) meaning "from depends on to". It is
// safe for concurrent use; every exported method acquires g.mu for its
// duration.
type Graph struct {
	mu sync.RWMutex

	nodes map[types.NodeID]struct{}

	// predecessors[id] is the set of nodes id depends on (outgoing edges).
	predecessors map[types.NodeID]map[types.NodeID]struct{}
	// successors[id] is the set of nodes that depend on id (incoming edges).
	successors map[types.NodeID]map[types.NodeID]struct{}
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:        make(map[types.NodeID]struct{}),
		predecessors: make(map[types.NodeID]map[types.NodeID]struct{}),
		successors:   make(map[types.NodeID]map[types.NodeID]struct{}),
	}
}

// AddNode registers id. Fails with ErrAlreadyExists if id is present.
func (g *Graph) AddNode(id types.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		return ErrAlreadyExists
	}
	g.nodes[id] = struct{}{}
	g.predecessors[id] = make(map[types.NodeID]struct{})
	g.successors[id] = make(map[types.NodeID]struct{})
	return nil
}

// RemoveNode removes id and every incident edge (I3). No-op if absent.
func (g *Graph) RemoveNode(id types.NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; !exists {
		return
	}

	for to := range g.predecessors[id] {
		delete(g.successors[to], id)
	}
	for from := range g.successors[id] {
		delete(g.predecessors[from], id)
	}

	delete(g.nodes, id)
	delete(g.predecessors, id)
	delete(g.successors, id)
}

// HasNode reports whether id is registered.
func (g *Graph) HasNode(id types.NodeID) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, exists := g.nodes[id]
	return exists
}

// Edge is a single from→to dependency ("from depends on to"), returned by
// Edges for snapshotting and inspection.
type Edge struct {
	From types.NodeID
	To   types.NodeID
}

// Nodes returns every registered node id, in no particular order.
func (g *Graph) Nodes() []types.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]types.NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	return ids
}

// Edges returns every from→to dependency currently in the graph, in no
// particular order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]Edge, 0)
	for from, tos := range g.predecessors {
		for to := range tos {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// AddEdge inserts from → to ("from depends on to"). Fails with
// ErrUnknownNode if either endpoint is unregistered, or ErrCycleDetected if
// the insertion would close a cycle (I2); on failure the graph is
// unchanged (IG2).
func (g *Graph) AddEdge(from, to types.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[from]; !ok {
		return ErrUnknownNode
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrUnknownNode
	}

	if _, exists := g.predecessors[from][to]; exists {
		return nil // duplicate edge: no-op
	}

	if from == to || g.reachable(to, from) {
		return ErrCycleDetected
	}

	g.predecessors[from][to] = struct{}{}
	g.successors[to][from] = struct{}{}
	return nil
}

// reachable reports whether target is reachable from start by following
// the predecessors relation (i.e. whether start transitively depends on
// target). Must be called with g.mu held.
func (g *Graph) reachable(start, target types.NodeID) bool {
	if start == target {
		return true
	}
	visited := make(map[types.NodeID]struct{})
	stack := []types.NodeID{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[n]; seen {
			continue
		}
		visited[n] = struct{}{}
		for dep := range g.predecessors[n] {
			if dep == target {
				return true
			}
			if _, seen := visited[dep]; !seen {
				stack = append(stack, dep)
			}
		}
	}
	return false
}

// RemoveEdge removes from → to if present. No-op otherwise.
func (g *Graph) RemoveEdge(from, to types.NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.predecessors[from]; !exists {
		return
	}
	delete(g.predecessors[from], to)
	if succ, exists := g.successors[to]; exists {
		delete(succ, from)
	}
}

// Predecessors returns the set of nodes id depends on.
func (g *Graph) Predecessors(id types.NodeID) []types.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return setToSlice(g.predecessors[id])
}

// Successors returns the set of nodes that depend on id.
func (g *Graph) Successors(id types.NodeID) []types.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return setToSlice(g.successors[id])
}

func setToSlice(m map[types.NodeID]struct{}) []types.NodeID {
	out := make([]types.NodeID, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	return out
}

// TransitiveSuccessors returns every node transitively dependent on id
// (id excluded), computed against the current graph snapshot. Used by
// pkg/evaluator's EvaluateIncremental to build the affected set; callers of
// pkg/dirty's MarkWithDependents and pkg/cache's InvalidateWithDependents
// can pass its result as the dependent set.
func (g *Graph) TransitiveSuccessors(id types.NodeID) []types.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[types.NodeID]struct{})
	stack := []types.NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for succ := range g.successors[n] {
			if _, seen := visited[succ]; !seen {
				visited[succ] = struct{}{}
				stack = append(stack, succ)
			}
		}
	}
	return setToSlice(visited)
}

// TransitivePredecessors returns every ancestor of id (id excluded),
// i.e. every node id transitively depends on.
func (g *Graph) TransitivePredecessors(id types.NodeID) []types.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := make(map[types.NodeID]struct{})
	stack := []types.NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dep := range g.predecessors[n] {
			if _, seen := visited[dep]; !seen {
				visited[dep] = struct{}{}
				stack = append(stack, dep)
			}
		}
	}
	return setToSlice(visited)
}

// TopologicalOrder returns a linear order over all registered nodes such
// that every edge (from → to) places to strictly before from (IE1). Ties
// among simultaneously-ready nodes are broken by collation key so repeated
// calls against an unchanged graph return an identical sequence (IG3).
func (g *Graph) TopologicalOrder() ([]types.NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.kahn(nil)
}

// TopologicalOrderRestricted returns a topological order over subset
// alone, preserving the relative order the full graph would produce.
func (g *Graph) TopologicalOrderRestricted(subset []types.NodeID) ([]types.NodeID, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	allowed := make(map[types.NodeID]struct{}, len(subset))
	for _, id := range subset {
		allowed[id] = struct{}{}
	}
	return g.kahn(allowed)
}

// kahn runs Kahn's algorithm restricted to `allowed` (nil means "all
// nodes"). Must be called with g.mu held for reading.
func (g *Graph) kahn(allowed map[types.NodeID]struct{}) ([]types.NodeID, error) {
	// A fresh Collator per call: Collator is not safe for concurrent use,
	// and TopologicalOrder only holds a read lock so multiple callers may
	// run this concurrently.
	collator := collate.New(language.Und)

	inDegree := make(map[types.NodeID]int)
	include := func(id types.NodeID) bool {
		if allowed == nil {
			return true
		}
		_, ok := allowed[id]
		return ok
	}

	for id := range g.nodes {
		if !include(id) {
			continue
		}
		deg := 0
		for dep := range g.predecessors[id] {
			if include(dep) {
				deg++
			}
		}
		inDegree[id] = deg
	}

	ready := make([]types.NodeID, 0, len(inDegree))
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sortDeterministic(ready, collator)

	order := make([]types.NodeID, 0, len(inDegree))
	for len(ready) > 0 {
		// Pop the smallest (by collation key) ready node.
		current := ready[0]
		ready = ready[1:]
		order = append(order, current)

		newlyReady := make([]types.NodeID, 0)
		for succ := range g.successors[current] {
			if !include(succ) {
				continue
			}
			if _, tracked := inDegree[succ]; !tracked {
				continue
			}
			inDegree[succ]--
			if inDegree[succ] == 0 {
				newlyReady = append(newlyReady, succ)
			}
		}
		if len(newlyReady) > 0 {
			sortDeterministic(newlyReady, collator)
			ready = mergeSorted(ready, newlyReady, collator)
		}
	}

	if len(order) != len(inDegree) {
		return nil, ErrCycleDetected
	}
	return order, nil
}

// sortDeterministic orders ids by collation key so the result is stable
// across runs regardless of map iteration order or process locale.
func sortDeterministic(ids []types.NodeID, collator *collate.Collator) {
	sort.Slice(ids, func(i, j int) bool {
		return collator.CompareString(string(ids[i]), string(ids[j])) < 0
	})
}

// mergeSorted merges two already-sorted (by collator) slices.
func mergeSorted(a, b []types.NodeID, collator *collate.Collator) []types.NodeID {
	out := make([]types.NodeID, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if collator.CompareString(string(a[i]), string(b[j])) <= 0 {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
