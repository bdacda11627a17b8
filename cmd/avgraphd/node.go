package main

import (
	"sync/atomic"

	"github.com/avnodegraph/core/pkg/types"
)

// oscillatorNode is a minimal demo Node: an audio-rate parameter that
// drifts every tick, used to exercise the evaluator and dirty tracker
// without wiring a real audio graph host.
type oscillatorNode struct {
	id    types.NodeID
	value int64
}

func newOscillatorNode(id string) *oscillatorNode {
	return &oscillatorNode{id: types.NodeID(id)}
}

func (n *oscillatorNode) ID() types.NodeID { return n.id }

func (n *oscillatorNode) Signature() types.NodeSignature {
	v := atomic.LoadInt64(&n.value)
	return types.NewNodeSignature(map[string]types.ParamValue{"value": types.IntParam(v)}, nil)
}

func (n *oscillatorNode) Evaluate() (types.Result, error) {
	return atomic.LoadInt64(&n.value), nil
}

// tick perturbs the node's value, which changes its Signature and so
// marks it due for re-evaluation on the next pass.
func (n *oscillatorNode) tick() {
	atomic.AddInt64(&n.value, 1)
}

// mixerNode depends on one or more oscillatorNodes and sums their current
// values; its Signature carries that sum, so it changes exactly when an
// upstream value changes and a pass with unchanged inputs is served from
// the cache, demonstrating memoization across a dependency edge.
type mixerNode struct {
	id      types.NodeID
	inputs  []*oscillatorNode
	tickNum int64
}

func newMixerNode(id string, inputs ...*oscillatorNode) *mixerNode {
	return &mixerNode{id: types.NodeID(id), inputs: inputs}
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
	atomic.AddInt64(&n.tickNum, 1)
	var sum int64
	for _, in := range n.inputs {
		sum += atomic.LoadInt64(&in.value)
	}
	return sum, nil
}
