package health

import (
	"context"
	"fmt"
	"time"

	"github.com/avnodegraph/core/pkg/cache"
	"github.com/avnodegraph/core/pkg/dirty"
)

// CacheHitRateCheck returns a CheckFunc that fails once the memoization
// cache's cumulative hit rate drops below minHitRate. It is a no-op until
// the cache has recorded at least one lookup, so it never flags a
// freshly started process.
func CacheHitRateCheck(c *cache.Cache, minHitRate float64) CheckFunc {
	return func(ctx context.Context) error {
		stats := c.Statistics()
		if stats.Hits+stats.Misses == 0 {
			return nil
		}
		if rate := stats.HitRate(); rate < minHitRate {
			return fmt.Errorf("cache hit rate %.3f below floor %.3f", rate, minHitRate)
		}
		return nil
	}
}

// DirtyBacklogCheck returns a CheckFunc that fails when the dirty tracker
// holds nodes that have gone unevaluated for longer than maxAge, which
// signals the evaluator has fallen behind the tracker.
func DirtyBacklogCheck(t *dirty.Tracker, maxAge time.Duration) CheckFunc {
	return func(ctx context.Context) error {
		stale := t.StaleDirtyNodes(maxAge)
		if len(stale) > 0 {
			return fmt.Errorf("%d node(s) dirty for longer than %v", len(stale), maxAge)
		}
		return nil
	}
}

// QueueDepthCheck returns a CheckFunc that fails when depthFn reports a
// queue depth at or above maxDepth, for use with the scheduler's audio
// and visual queues.
func QueueDepthCheck(name string, depthFn func() int, maxDepth int) CheckFunc {
	return func(ctx context.Context) error {
		if depth := depthFn(); depth >= maxDepth {
			return fmt.Errorf("%s queue depth %d at or above ceiling %d", name, depth, maxDepth)
		}
		return nil
	}
}
