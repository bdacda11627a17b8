package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avnodegraph/core/pkg/graph"
	"github.com/avnodegraph/core/pkg/types"
)

func buildChain(t *testing.T, ids ...types.NodeID) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, id := range ids {
		require.NoError(t, g.AddNode(id))
	}
	for i := 1; i < len(ids); i++ {
		// ids[i] depends on ids[i-1]
		require.NoError(t, g.AddEdge(ids[i], ids[i-1]))
	}
	return g
}

func TestAddNode_Duplicate(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode("A"))
	require.ErrorIs(t, g.AddNode("A"), graph.ErrAlreadyExists)
}

func TestAddEdge_UnknownNode(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode("A"))
	require.ErrorIs(t, g.AddEdge("A", "B"), graph.ErrUnknownNode)
	require.ErrorIs(t, g.AddEdge("B", "A"), graph.ErrUnknownNode)
}

func TestAddEdge_SelfLoop(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode("A"))
	require.ErrorIs(t, g.AddEdge("A", "A"), graph.ErrCycleDetected)
}

func TestAddEdge_DuplicateIsNoop(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode("A"))
	require.NoError(t, g.AddNode("B"))
	require.NoError(t, g.AddEdge("A", "B"))
	require.NoError(t, g.AddEdge("A", "B"))
	require.ElementsMatch(t, []types.NodeID{"B"}, g.Predecessors("A"))
}

func TestAddEdge_CycleRejectedLeavesGraphUnchanged(t *testing.T) {
	// B depends on A and C depends on B, so C transitively depends on A;
	// making A depend on C closes a cycle and must be rejected with the
	// graph left as it was: the scenario from spec.md §8 #4.
	g := buildChain(t, "A", "B", "C") // C depends on B depends on A

	before, err := g.TopologicalOrder()
	require.NoError(t, err)

	err = g.AddEdge("A", "C")
	require.ErrorIs(t, err, graph.ErrCycleDetected)

	after, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestRemoveNode_CascadesEdges(t *testing.T) {
	g := buildChain(t, "A", "B", "C")
	g.RemoveNode("B")

	require.False(t, g.HasNode("B"))
	require.Empty(t, g.Predecessors("C"))
	require.Empty(t, g.Successors("A"))
}

func TestRemoveNode_Noop(t *testing.T) {
	g := graph.New()
	require.NoError(t, g.AddNode("A"))
	g.RemoveNode("nonexistent")
	require.True(t, g.HasNode("A"))
}

func TestTopologicalOrder_LinearChain(t *testing.T) {
	g := buildChain(t, "A", "B", "C")
	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Equal(t, []types.NodeID{"A", "B", "C"}, order)
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	g := graph.New()
	for _, id := range []types.NodeID{"z", "y", "x", "w"} {
		require.NoError(t, g.AddNode(id))
	}
	// no edges: all four are simultaneously ready, tie-break by collation.
	first, err := g.TopologicalOrder()
	require.NoError(t, err)
	second, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, []types.NodeID{"w", "x", "y", "z"}, first)
}

func TestTopologicalOrder_EmptyGraph(t *testing.T) {
	g := graph.New()
	order, err := g.TopologicalOrder()
	require.NoError(t, err)
	require.Empty(t, order)
}

func TestTopologicalOrderRestricted_PreservesRelativeOrder(t *testing.T) {
	g := buildChain(t, "A", "B", "C", "D")
	order, err := g.TopologicalOrderRestricted([]types.NodeID{"D", "B"})
	require.NoError(t, err)
	require.Equal(t, []types.NodeID{"B", "D"}, order)
}

func TestTransitiveSuccessorsAndPredecessors(t *testing.T) {
	g := buildChain(t, "A", "B", "C")
	require.ElementsMatch(t, []types.NodeID{"B", "C"}, g.TransitiveSuccessors("A"))
	require.ElementsMatch(t, []types.NodeID{"A", "B"}, g.TransitivePredecessors("C"))
	require.Empty(t, g.TransitiveSuccessors("C"))
}

func TestNodesAndEdges_ReflectCurrentGraph(t *testing.T) {
	g := buildChain(t, "A", "B", "C")
	require.ElementsMatch(t, []types.NodeID{"A", "B", "C"}, g.Nodes())
	require.ElementsMatch(t, []graph.Edge{{From: "B", To: "A"}, {From: "C", To: "B"}}, g.Edges())
}
