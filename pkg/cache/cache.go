package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/avnodegraph/core/pkg/telemetry"
	"github.com/avnodegraph/core/pkg/types"
)

// entry is the payload carried by each container/list element. The list
// itself supplies recency order: Front is most-recently-used, Back is
// least-recently-used.
type entry struct {
	nodeID     types.NodeID
	sigKey     string
	result     types.Result
	insertedAt time.Time
}

// Statistics is a point-in-time snapshot of cache effectiveness, read by
// pkg/health's CacheHitRateCheck. pkg/telemetry does not consume it; it
// counts hits and misses per Lookup instead.
type Statistics struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Expired   uint64
	Size      int
}

// HitRate returns Hits / (Hits + Misses), or 0 when there have been no
// lookups at all.
func (s Statistics) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is the Memoization Cache component (C3). It maps a (NodeID,
// NodeSignature) pair to a previously-computed Result, subject to TTL
// expiry and a bounded LRU capacity.
type Cache struct {
	mu     sync.RWMutex
	cfg    Config
	byNode map[types.NodeID]map[string]*list.Element
	order  *list.List // of *entry, front = MRU

	hits      uint64
	misses    uint64
	evictions uint64
	expired   uint64

	telemetry *telemetry.Provider
}

// New constructs a Cache with the given configuration.
func New(cfg Config) *Cache {
	return &Cache{
		cfg:    cfg,
		byNode: make(map[types.NodeID]map[string]*list.Element),
		order:  list.New(),
	}
}

// SetTelemetry attaches a telemetry.Provider so every Lookup records a
// cache.hits.total/cache.misses.total observation. A nil provider is
// ignored, leaving the cache unmonitored (the default). Returns the cache
// for chaining.
func (c *Cache) SetTelemetry(p *telemetry.Provider) *Cache {
	if p != nil {
		c.telemetry = p
	}
	return c
}

// Lookup reports the cached result for (id, sig), if any unexpired entry
// exists with a structurally-equal signature. A hit moves the entry to the
// front of the LRU order.
func (c *Cache) Lookup(id types.NodeID, sig types.NodeSignature) (types.Result, bool) {
	key := signatureKey(sig)

	c.mu.Lock()
	defer c.mu.Unlock()

	sigs, ok := c.byNode[id]
	if !ok {
		c.misses++
		c.recordLookup(false)
		return nil, false
	}
	el, ok := sigs[key]
	if !ok {
		c.misses++
		c.recordLookup(false)
		return nil, false
	}

	e := el.Value.(*entry)
	if c.cfg.TTL > 0 && time.Since(e.insertedAt) > c.cfg.TTL {
		c.removeElement(el)
		c.expired++
		c.misses++
		c.recordLookup(false)
		return nil, false
	}

	c.order.MoveToFront(el)
	c.hits++
	c.recordLookup(true)
	return e.result, true
}

// recordLookup reports hit/miss to the attached telemetry.Provider, if
// any. Callers must hold c.mu. Lookup has no context.Context of its own,
// so the observation is recorded against context.Background().
func (c *Cache) recordLookup(hit bool) {
	if c.telemetry != nil {
		c.telemetry.RecordCacheLookup(context.Background(), hit)
	}
}

// Store records the result of evaluating id under sig, evicting the
// least-recently-used entry first if this insertion would exceed
// Config.MaxEntries. Storing again for an id/sig pair already present
// replaces the result and refreshes its insertion time and recency.
func (c *Cache) Store(id types.NodeID, sig types.NodeSignature, result types.Result) {
	key := signatureKey(sig)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.byNode[id][key]; ok {
		e := el.Value.(*entry)
		e.result = result
		e.insertedAt = time.Now()
		c.order.MoveToFront(el)
		return
	}

	for len(c.byNode) > 0 && c.size() >= c.cfg.MaxEntries {
		c.evictOldest()
	}

	sigs, ok := c.byNode[id]
	if !ok {
		sigs = make(map[string]*list.Element)
		c.byNode[id] = sigs
	}

	e := &entry{nodeID: id, sigKey: key, result: result, insertedAt: time.Now()}
	el := c.order.PushFront(e)
	sigs[key] = el
}

// Invalidate drops every cached entry for id, regardless of signature.
func (c *Cache) Invalidate(id types.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(id)
}

// InvalidateWithDependents invalidates id and every id in dependents. The
// cache has no notion of graph topology itself (spec.md §4.3: the cache
// does not own dependency structure), so the caller supplies the
// transitive-successor set computed from pkg/graph.
func (c *Cache) InvalidateWithDependents(id types.NodeID, dependents []types.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(id)
	for _, d := range dependents {
		c.invalidateLocked(d)
	}
}

func (c *Cache) invalidateLocked(id types.NodeID) {
	sigs, ok := c.byNode[id]
	if !ok {
		return
	}
	for _, el := range sigs {
		c.order.Remove(el)
	}
	delete(c.byNode, id)
}

// Clear empties the cache entirely, preserving configuration and resetting
// no statistics counters (Hits/Misses/Evictions remain cumulative).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byNode = make(map[types.NodeID]map[string]*list.Element)
	c.order.Init()
}

// Statistics returns a snapshot of cumulative hit/miss/eviction counters
// and the current entry count.
func (c *Cache) Statistics() Statistics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Statistics{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Expired:   c.expired,
		Size:      c.size(),
	}
}

// Entry is a single cached (node, signature) -> result pairing, returned
// by Entries for snapshotting. SigKey is the opaque signature key pkg/cache
// itself computes (see signatureKey); it is exposed so a snapshot can be
// restored without needing to recompute it from a NodeSignature the
// caller may no longer have on hand.
type Entry struct {
	NodeID     types.NodeID
	SigKey     string
	Result     types.Result
	InsertedAt time.Time
}

// Entries returns every live, unexpired cache entry, in no particular
// order. Used by evaluator.Snapshot to capture memoized results.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry)
		if c.cfg.TTL > 0 && time.Since(e.insertedAt) > c.cfg.TTL {
			continue
		}
		out = append(out, Entry{NodeID: e.nodeID, SigKey: e.sigKey, Result: e.result, InsertedAt: e.insertedAt})
	}
	return out
}

// restoreEntry reinserts a previously captured entry directly under its
// original signature key, bypassing signatureKey recomputation. Used only
// by snapshot restore; it participates in normal LRU/capacity accounting.
func (c *Cache) restoreEntry(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.byNode) > 0 && c.size() >= c.cfg.MaxEntries {
		c.evictOldest()
	}
	sigs, ok := c.byNode[e.NodeID]
	if !ok {
		sigs = make(map[string]*list.Element)
		c.byNode[e.NodeID] = sigs
	}
	ent := &entry{nodeID: e.NodeID, sigKey: e.SigKey, result: e.Result, insertedAt: e.InsertedAt}
	el := c.order.PushFront(ent)
	sigs[e.SigKey] = el
}

// RestoreEntries repopulates the cache from a previously captured set of
// Entries, as produced by Entries. Existing contents are cleared first.
func (c *Cache) RestoreEntries(entries []Entry) {
	c.Clear()
	for _, e := range entries {
		c.restoreEntry(e)
	}
}

// size returns the number of live entries. Callers must hold c.mu.
func (c *Cache) size() int {
	return c.order.Len()
}

// evictOldest removes the least-recently-used entry. Callers must hold
// c.mu for writing and must have confirmed the cache is non-empty.
func (c *Cache) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	c.removeElement(back)
	c.evictions++
}

// removeElement drops el from both the per-node signature map and the LRU
// list. Callers must hold c.mu for writing.
func (c *Cache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	c.order.Remove(el)
	if sigs, ok := c.byNode[e.nodeID]; ok {
		delete(sigs, e.sigKey)
		if len(sigs) == 0 {
			delete(c.byNode, e.nodeID)
		}
	}
}
