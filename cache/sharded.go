package cache

import (
	"fmt"
	"sync/atomic"

	"github.com/IvanBrykalov/memocache/internal/util"
)

// Sharded spreads keys over independent Locked caches to reduce lock
// contention. Each shard is built by the same factory, so capacity and LRU
// order are per shard, not global.
type Sharded[K comparable, V any] struct {
	shards []*Locked[K, V]
	hash   func(K) uint64

	// capacity overrides the summed shard capacities in Stats when > 0.
	capacity int
}

var (
	_ Cache[string, int]  = (*Sharded[string, int])(nil)
	_ StatsReporter       = (*Sharded[string, int])(nil)
	_ Sweeper             = (*Sharded[string, int])(nil)
	_ Peeker[string, int] = (*Sharded[string, int])(nil)
)

// NewSharded builds a sharded cache. shards is rounded up to a power of two;
// shards <= 0 picks util.ReasonableShardCount(). The first factory error is
// returned as-is and no cache is built.
//
// Keys must be of a type util.Hash supports (strings, byte slices/arrays,
// integers, fmt.Stringer).
func NewSharded[K comparable, V any](shards int, factory func() (Cache[K, V], error)) (*Sharded[K, V], error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: nil shard factory", ErrInvalidConfiguration)
	}
	if shards <= 0 {
		shards = util.ReasonableShardCount()
	} else {
		shards = int(util.NextPow2(uint64(shards)))
	}
	s := &Sharded[K, V]{
		shards: make([]*Locked[K, V], shards),
		hash:   util.Hash[K],
	}
	for i := range s.shards {
		c, err := factory()
		if err != nil {
			return nil, err
		}
		s.shards[i] = NewLocked(c)
	}
	return s, nil
}

// NewShardedLRU splits capacity evenly (ceil) across shards of LRU caches.
// Stats reports opt.Capacity, and opt.Metrics sees Size as the total across
// all shards.
func NewShardedLRU[K comparable, V any](shards int, opt Options[K, V]) (*Sharded[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidConfiguration, opt.Capacity)
	}
	if shards <= 0 {
		shards = util.ReasonableShardCount()
	}
	n := int(util.NextPow2(uint64(shards)))
	var total atomic.Int64
	s, err := NewSharded(n, func() (Cache[K, V], error) {
		per := opt
		per.Capacity = (opt.Capacity + n - 1) / n
		if opt.Metrics != nil {
			per.Metrics = &shardMetrics{Metrics: opt.Metrics, total: &total}
		}
		c, err := NewLRU(per)
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	s.capacity = opt.Capacity
	return s, nil
}

// shardMetrics forwards one shard's signals to a shared Metrics, turning
// the shard-local Size into a running total. Size is only called under the
// owning shard's lock, so last needs no synchronization.
type shardMetrics struct {
	Metrics
	total *atomic.Int64
	last  int
}

func (m *shardMetrics) Size(entries int) {
	t := m.total.Add(int64(entries - m.last))
	m.last = entries
	m.Metrics.Size(int(t))
}

func (s *Sharded[K, V]) Get(k K) (V, bool)  { return s.shard(k).Get(k) }
func (s *Sharded[K, V]) Peek(k K) (V, bool) { return s.shard(k).Peek(k) }
func (s *Sharded[K, V]) Put(k K, v V)       { s.shard(k).Put(k, v) }
func (s *Sharded[K, V]) Remove(k K) bool    { return s.shard(k).Remove(k) }

// Clear clears every shard. It is not atomic across shards.
func (s *Sharded[K, V]) Clear() {
	for _, sh := range s.shards {
		sh.Clear()
	}
}

// Len returns the total number of resident entries across all shards.
func (s *Sharded[K, V]) Len() int {
	total := 0
	for _, sh := range s.shards {
		total += sh.Len()
	}
	return total
}

// Stats sums shard snapshots. Capacity is the configured total when the
// cache was built by NewShardedLRU. The result is not a consistent cut.
func (s *Sharded[K, V]) Stats() Stats {
	var out Stats
	for _, sh := range s.shards {
		st := sh.Stats()
		out.Capacity += st.Capacity
		out.Size += st.Size
		out.Hits += st.Hits
		out.Misses += st.Misses
	}
	if s.capacity > 0 {
		out.Capacity = s.capacity
	}
	out.HitRate = hitRate(out.Hits, out.Misses)
	return out
}

// Cleanup sweeps every shard and returns the total purged.
func (s *Sharded[K, V]) Cleanup() int {
	total := 0
	for _, sh := range s.shards {
		total += sh.Cleanup()
	}
	return total
}

// Shards returns the shard count.
func (s *Sharded[K, V]) Shards() int { return len(s.shards) }

func (s *Sharded[K, V]) shard(k K) *Locked[K, V] {
	return s.shards[util.ShardIndex(s.hash(k), len(s.shards))]
}
