package dirty

import (
	"sort"

	"github.com/avnodegraph/core/pkg/types"
)

// RegisterRegion associates rect and priority with id, for UI-invalidation
// queries. The region's lifetime is bound to the node: Unregister(id)
// removes it too.
func (t *Tracker) RegisterRegion(id types.NodeID, rect types.Rect, priority types.Priority) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.regions[id] = types.Region{NodeID: id, Rect: rect, Priority: priority}
}

// MarkRegionDirty marks dirty (at Normal level) every registered node
// whose region intersects rect.
func (t *Tracker) MarkRegionDirty(rect types.Rect) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, region := range t.regions {
		if region.Rect.Intersects(rect) {
			_ = t.markLocked(id, types.DirtyNormal)
		}
	}
}

// DirtyRegionsInViewport returns the regions of currently-dirty nodes that
// overlap viewport.
func (t *Tracker) DirtyRegionsInViewport(viewport types.Rect) []types.Region {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []types.Region
	for id, region := range t.regions {
		s, ok := t.nodes[id]
		if !ok || !s.isDirty {
			continue
		}
		if region.Rect.Intersects(viewport) {
			out = append(out, region)
		}
	}
	return out
}

// MergedDirtyRegionsInViewport returns the same set as
// DirtyRegionsInViewport with overlapping rectangles merged by iterative
// axis-aligned union; a merged region's priority is the maximum across the
// regions folded into it. The only contract (spec.md §4.2) is that the
// union of the returned rectangles equals the union of the inputs — the
// merge order below is a sweep over the x-sorted input and is not itself
// part of the contract.
func (t *Tracker) MergedDirtyRegionsInViewport(viewport types.Rect) []types.Region {
	regions := t.DirtyRegionsInViewport(viewport)
	if len(regions) == 0 {
		return nil
	}

	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Rect.X != regions[j].Rect.X {
			return regions[i].Rect.X < regions[j].Rect.X
		}
		return regions[i].Rect.Y < regions[j].Rect.Y
	})

	merged := []types.Region{regions[0]}
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if last.Rect.Intersects(r.Rect) {
			last.Rect = last.Rect.Union(r.Rect)
			if r.Priority > last.Priority {
				last.Priority = r.Priority
			}
			continue
		}
		merged = append(merged, r)
	}

	// A single sweep pass can miss a union opportunity introduced by an
	// earlier merge growing rightward past a later rectangle's start; keep
	// sweeping until a pass produces no further merges. Region counts in
	// one viewport query are small, so the extra passes are cheap.
	for {
		again, progressed := mergeOnePass(merged)
		if !progressed {
			return again
		}
		merged = again
	}
}

func mergeOnePass(regions []types.Region) ([]types.Region, bool) {
	if len(regions) < 2 {
		return regions, false
	}
	out := make([]types.Region, 0, len(regions))
	used := make([]bool, len(regions))
	progressed := false

	for i := range regions {
		if used[i] {
			continue
		}
		cur := regions[i]
		for j := i + 1; j < len(regions); j++ {
			if used[j] {
				continue
			}
			if cur.Rect.Intersects(regions[j].Rect) {
				cur.Rect = cur.Rect.Union(regions[j].Rect)
				if regions[j].Priority > cur.Priority {
					cur.Priority = regions[j].Priority
				}
				used[j] = true
				progressed = true
			}
		}
		out = append(out, cur)
	}
	return out, progressed
}
