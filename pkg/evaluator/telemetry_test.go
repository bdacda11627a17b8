package evaluator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avnodegraph/core/pkg/telemetry"
	"github.com/avnodegraph/core/pkg/types"
)

func TestSetTelemetry_RecordsPassesAndNodesWithoutAffectingOutcome(t *testing.T) {
	e, _, _, _ := newHarness(t)

	ctx := context.Background()
	provider, err := telemetry.NewProvider(ctx, telemetry.DefaultConfig())
	require.NoError(t, err)
	defer provider.Shutdown(ctx)

	require.Same(t, e, e.SetTelemetry(provider), "SetTelemetry must return the evaluator for chaining")

	a := newFakeNode("A")
	b := newFakeNode("B")
	b.evalFn = func() (types.Result, error) { return nil, errors.New("boom") }
	require.NoError(t, e.RegisterNode(a))
	require.NoError(t, e.RegisterNode(b))

	result, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.False(t, result.AllSucceeded)
	require.Equal(t, 1, result.FailedCount)

	// Same node signature the second time round is a cache hit; telemetry
	// recording must not change that outcome.
	result2, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result2.CachedCount)
}

func TestSetTelemetry_NilProviderIsIgnored(t *testing.T) {
	e, _, _, _ := newHarness(t)
	require.Same(t, e, e.SetTelemetry(nil))

	a := newFakeNode("A")
	require.NoError(t, e.RegisterNode(a))

	result, err := e.EvaluateAll(context.Background())
	require.NoError(t, err)
	require.True(t, result.AllSucceeded)
}
