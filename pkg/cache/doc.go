// Package cache implements the Memoization Cache component (C3): a map
// from (node id, input signature) to a cached result, with TTL-since-insertion
// expiry and bounded capacity under LRU-by-last-access eviction.
//
// # Overview
//
// A hit requires both an exact NodeID match and a structurally-equal
// NodeSignature match (spec.md §4.3's correctness contract): a mismatched
// signature must never return a stale result. Capacity is enforced at
// store time — inserting past the configured maximum evicts the
// least-recently-accessed entry first.
//
// # Thread Safety
//
// One sync.RWMutex guards the whole cache, matching the coarse-lock
// discipline the rest of the core uses. LRU bookkeeping (moving an entry
// to the front of the access list on a hit) happens under the same lock
// a lookup takes, so access-time updates never tear.
package cache
