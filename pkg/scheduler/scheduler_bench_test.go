package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/avnodegraph/core/pkg/scheduler"
	"github.com/avnodegraph/core/pkg/types"
)

func BenchmarkProcessFrame(b *testing.B) {
	cfg := scheduler.Default()
	s := scheduler.New(cfg)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < int(cfg.InitialBatchSize); j++ {
			_ = s.QueueAudio(types.Event{Timestamp: time.Now(), Priority: types.PriorityNormal})
			_ = s.QueueVisual(types.Event{Timestamp: time.Now(), Priority: types.PriorityNormal, ParamName: "p"})
		}
		s.ProcessFrame(context.Background(), nil)
	}
}

func BenchmarkProcessFrameWithOptimization_HeavyCoalescing(b *testing.B) {
	cfg := scheduler.Default()
	s := scheduler.New(cfg)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		for j := 0; j < int(cfg.InitialBatchSize); j++ {
			_ = s.QueueVisual(types.Event{Timestamp: time.Now(), Priority: types.PriorityNormal, ParamName: "shared"})
		}
		s.ProcessFrameWithOptimization(context.Background(), nil)
	}
}
