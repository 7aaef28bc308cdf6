// Package cache provides small, generic, in-memory cache engines: a
// capacity-bounded LRU with hit/miss accounting and a fixed-lifetime TTL
// cache, plus opt-in synchronized wrappers.
//
// # Design
//
//   - Storage: each engine keeps a map[K]entry index. The LRU engine also
//     keeps an intrusive MRU↔LRU doubly linked list, so Get/Put are O(1).
//
//   - LRU: Put of a new key at full capacity evicts the tail (least recently
//     used) before inserting. Get and Put both promote to MRU. Ties never
//     depend on key value or hash; only on access order.
//
//   - TTL: every Put sets expiry = now + TTL. Get purges a single expired
//     entry; Cleanup sweeps all of them and returns the count. There are no
//     background goroutines. TTL == 0 is valid and caches nothing.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     NoopMetrics is the default; see metrics/prom and metrics/logging.
//
//   - Callbacks: Options.OnEvict(k, v, reason) fires for every eviction
//     (EvictCapacity or EvictExpired). Remove and Clear are not evictions.
//
// # Concurrency
//
// LRU and TTL are single-owner: they perform no locking and corrupt their
// bookkeeping under concurrent mutation. Share an instance with NewLocked
// (one mutex around each call) or NewSharded (independent locked shards).
//
// # Basic usage
//
//	c, err := cache.NewLRU[string, int](cache.Options[string, int]{Capacity: 2})
//	if err != nil {
//	    return err
//	}
//	c.Put("a", 1)
//	c.Put("b", 2)
//	c.Get("a")    // promotes a
//	c.Put("c", 3) // evicts b
//	st := c.Stats() // {Capacity:2 Size:2 Hits:1 Misses:0 HitRate:1}
//
// # With TTL
//
//	t, _ := cache.NewTTL[string, string](cache.Options[string, string]{TTL: time.Minute})
//	t.Put("k", "v")
//	n := t.Cleanup() // entries past their deadline
package cache
