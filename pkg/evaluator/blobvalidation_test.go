package evaluator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avnodegraph/core/pkg/nodesig"
	"github.com/avnodegraph/core/pkg/types"
)

func gainSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"required":             []interface{}{"gain"},
		"additionalProperties": true,
		"properties": map[string]interface{}{
			"gain": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
		},
	}
}

func TestRegisterBlobSchema_ValidBlobEvaluatesNormally(t *testing.T) {
	e, _, _, _ := newHarness(t)

	v, err := nodesig.New(nodesig.Config{Schema: gainSchema(), Strict: true})
	require.NoError(t, err)
	e.RegisterBlobSchema("A", v)

	a := newFakeNode("A")
	a.sig = types.NewNodeSignature(map[string]types.ParamValue{
		"config": types.BytesParam([]byte(`{"gain": 0.5}`)),
	}, nil)
	require.NoError(t, e.RegisterNode(a))

	result, err := e.EvaluateAll(context.Background())
	require.NoError(t, err)
	require.True(t, result.AllSucceeded)
	require.Equal(t, 1, a.evalCount)
}

func TestRegisterBlobSchema_InvalidBlobFailsNodeWithoutEvaluating(t *testing.T) {
	e, _, tracker, _ := newHarness(t)

	v, err := nodesig.New(nodesig.Config{Schema: gainSchema(), Strict: true})
	require.NoError(t, err)
	e.RegisterBlobSchema("A", v)

	a := newFakeNode("A")
	a.sig = types.NewNodeSignature(map[string]types.ParamValue{
		"config": types.BytesParam([]byte(`{"gain": 5}`)),
	}, nil)
	require.NoError(t, e.RegisterNode(a))

	result, err := e.EvaluateAll(context.Background())
	require.NoError(t, err)
	require.False(t, result.AllSucceeded)
	require.Equal(t, 1, result.FailedCount)
	require.Equal(t, 0, a.evalCount, "a node whose blob fails validation must never reach Evaluate")
	require.True(t, tracker.IsDirty("A"), "a failed node stays dirty")
}
