package evaluator_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/avnodegraph/core/pkg/cache"
	"github.com/avnodegraph/core/pkg/dirty"
	"github.com/avnodegraph/core/pkg/evaluator"
	"github.com/avnodegraph/core/pkg/graph"
	"github.com/avnodegraph/core/pkg/types"
)

func BenchmarkEvaluateAll_AllCacheHits(b *testing.B) {
	for _, n := range []int{16, 256, 4096} {
		b.Run(fmt.Sprintf("nodes_%d", n), func(b *testing.B) {
			g := graph.New()
			tracker := dirty.New(dirty.Default())
			c := cache.New(cache.Default())
			e := evaluator.New(g, tracker, c, evaluator.Default())

			for i := 0; i < n; i++ {
				node := newFakeNode(fmt.Sprintf("n%d", i))
				if err := e.RegisterNode(node); err != nil {
					b.Fatal(err)
				}
			}

			ctx := context.Background()
			if _, err := e.EvaluateAll(ctx); err != nil {
				b.Fatal(err)
			}

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := e.EvaluateAll(ctx); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEvaluateAll_FreshEvaluations(b *testing.B) {
	g := graph.New()
	tracker := dirty.New(dirty.Default())
	c := cache.New(cache.Default())
	e := evaluator.New(g, tracker, c, evaluator.Default())

	const n = 256
	nodes := make([]*fakeNode, n)
	for i := 0; i < n; i++ {
		nodes[i] = newFakeNode(fmt.Sprintf("n%d", i))
		if err := e.RegisterNode(nodes[i]); err != nil {
			b.Fatal(err)
		}
	}

	ctx := context.Background()
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for _, node := range nodes {
			node.sig = types.NewNodeSignature(map[string]types.ParamValue{"v": types.IntParam(int64(i))}, nil)
		}
		if _, err := e.EvaluateAll(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
