// Package integration wires C1 through C5 together the way cmd/avgraphd
// does, exercising the whole incremental evaluation core end to end rather
// than any single component in isolation.
package integration_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avnodegraph/core/pkg/cache"
	"github.com/avnodegraph/core/pkg/dirty"
	"github.com/avnodegraph/core/pkg/evaluator"
	"github.com/avnodegraph/core/pkg/graph"
	"github.com/avnodegraph/core/pkg/scheduler"
	"github.com/avnodegraph/core/pkg/types"
)

// oscillatorNode is a minimal Node whose Signature changes every tick,
// forcing a cache miss and a re-evaluation on the next pass.
type oscillatorNode struct {
	id    types.NodeID
	value int64
}

func (n *oscillatorNode) ID() types.NodeID { return n.id }

func (n *oscillatorNode) Signature() types.NodeSignature {
	return types.NewNodeSignature(map[string]types.ParamValue{
		"value": types.IntParam(atomic.LoadInt64(&n.value)),
	}, nil)
}

func (n *oscillatorNode) Evaluate() (types.Result, error) {
	return atomic.LoadInt64(&n.value), nil
}

func (n *oscillatorNode) tick() { atomic.AddInt64(&n.value, 1) }

// mixerNode depends on one or more oscillators and sums their last known
// value, giving the graph a real dependency edge to walk.
type mixerNode struct {
	id     types.NodeID
	inputs []*oscillatorNode
}

func (n *mixerNode) ID() types.NodeID { return n.id }

func (n *mixerNode) Signature() types.NodeSignature {
	deps := make([]types.NodeID, len(n.inputs))
	var sum int64
	for i, in := range n.inputs {
		deps[i] = in.id
		sum += atomic.LoadInt64(&in.value)
	}
	return types.NewNodeSignature(map[string]types.ParamValue{"sum": types.IntParam(sum)}, deps)
}

func (n *mixerNode) Evaluate() (types.Result, error) {
	var sum int64
	for _, in := range n.inputs {
		sum += atomic.LoadInt64(&in.value)
	}
	return sum, nil
}

// TestEndToEnd_DriftDrivenReEvaluation exercises the evaluation flow a host
// like cmd/avgraphd relies on: an oscillator's drift marks its dependent
// mixer dirty and the evaluator's next pass picks up the change through a
// cache miss rather than a stale memoized result. The scheduler is covered
// by TestEndToEnd_SchedulerFrameLoopAlongsideEvaluation.
func TestEndToEnd_DriftDrivenReEvaluation(t *testing.T) {
	g := graph.New()
	tracker := dirty.New(dirty.Default())
	memo := cache.New(cache.Default())
	eval := evaluator.New(g, tracker, memo, evaluator.Default())

	left := &oscillatorNode{id: "osc.left"}
	right := &oscillatorNode{id: "osc.right"}
	mixer := &mixerNode{id: "mixer.out", inputs: []*oscillatorNode{left, right}}

	require.NoError(t, eval.RegisterNode(left))
	require.NoError(t, eval.RegisterNode(right))
	require.NoError(t, eval.RegisterNode(mixer))
	require.NoError(t, eval.AddDependency("mixer.out", "osc.left"))
	require.NoError(t, eval.AddDependency("mixer.out", "osc.right"))

	ctx := context.Background()

	result, err := eval.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, result.EvaluatedCount)
	require.True(t, result.AllSucceeded)

	got, ok := memo.Lookup(mixer.id, mixer.Signature())
	require.True(t, ok)
	require.Equal(t, int64(0), got)

	// Perturb both oscillators, as a frame tick would; the mixer's
	// signature now differs so the cache must miss on it.
	left.tick()
	right.tick()

	result, err = eval.EvaluateIncremental(ctx, []types.NodeID{"osc.left", "osc.right"})
	require.NoError(t, err)
	require.True(t, result.AllSucceeded)
	require.False(t, tracker.IsDirty("mixer.out"), "a successful evaluation clears the dirty flag")

	got, ok = memo.Lookup(mixer.id, mixer.Signature())
	require.True(t, ok)
	require.Equal(t, int64(2), got)

	// A third pass with nothing perturbed walks nothing: no node is dirty,
	// so EvaluateIncremental evaluates no node and makes no cache lookup.
	statsBefore := memo.Statistics()
	result, err = eval.EvaluateIncremental(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 0, result.EvaluatedCount)
	require.Equal(t, statsBefore.Hits, memo.Statistics().Hits)
}

// TestEndToEnd_SchedulerFrameLoopAlongsideEvaluation drives the scheduler
// the way cmd/avgraphd's frame loop does: queue an audio and a visual event,
// process one frame, confirm audio drains before visual, and confirm the
// sync-event stream broadcasts that frame's number, while the evaluator
// keeps running independently against the same process.
func TestEndToEnd_SchedulerFrameLoopAlongsideEvaluation(t *testing.T) {
	g := graph.New()
	tracker := dirty.New(dirty.Default())
	memo := cache.New(cache.Default())
	eval := evaluator.New(g, tracker, memo, evaluator.Default())

	osc := &oscillatorNode{id: "osc"}
	require.NoError(t, eval.RegisterNode(osc))

	cfg := scheduler.Default()
	cfg.InitialBatchSize = 4
	sched := scheduler.New(cfg)

	syncCh := sched.SyncEventStream()

	require.NoError(t, sched.QueueAudio(types.Event{Timestamp: time.Now(), Priority: types.PriorityCritical, Kind: types.EventKindAudio}))
	require.NoError(t, sched.QueueVisual(types.Event{Timestamp: time.Now(), Priority: types.PriorityNormal, Kind: types.EventKindVisual, ParamName: "gain"}))

	ctx := context.Background()
	var drained []types.Event
	stats := sched.ProcessFrame(ctx, func(e types.Event) { drained = append(drained, e) })

	require.Equal(t, 1, stats.AudioDrained)
	require.Equal(t, 1, stats.VisualDrained)
	require.Len(t, drained, 2)
	require.Equal(t, types.PriorityCritical, drained[0].Priority, "audio is handled before visual in drain order")

	select {
	case evt := <-syncCh:
		require.Equal(t, stats.FrameNumber, evt.FrameNumber)
	case <-time.After(time.Second):
		t.Fatal("expected a sync event after ProcessFrame")
	}

	osc.tick()
	_, err := eval.EvaluateAll(ctx)
	require.NoError(t, err)
}
