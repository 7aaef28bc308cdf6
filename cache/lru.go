package cache

import "fmt"

// LRU is a capacity-bounded Least-Recently-Used cache with hit/miss
// accounting. Lookups go through a map[K]*node; recency is kept in an
// intrusive MRU↔LRU doubly linked list, so Get and Put are O(1).
//
// LRU is not safe for concurrent use. Counters are per instance; two caches
// never share statistics.
type LRU[K comparable, V any] struct {
	idx  store[K, *node[K, V]]
	head *node[K, V] // MRU
	tail *node[K, V] // LRU
	cap  int

	hits   uint64
	misses uint64

	opt Options[K, V]
}

var (
	_ Cache[string, int]  = (*LRU[string, int])(nil)
	_ StatsReporter       = (*LRU[string, int])(nil)
	_ Peeker[string, int] = (*LRU[string, int])(nil)
)

// NewLRU constructs an LRU cache holding at most opt.Capacity entries.
// It returns ErrInvalidConfiguration if Capacity <= 0.
func NewLRU[K comparable, V any](opt Options[K, V]) (*LRU[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidConfiguration, opt.Capacity)
	}
	return &LRU[K, V]{
		idx: newStore[K, *node[K, V]](opt.Capacity),
		cap: opt.Capacity,
		opt: opt.withDefaults(),
	}, nil
}

// Get returns the value for k. A hit promotes the entry to MRU.
func (c *LRU[K, V]) Get(k K) (V, bool) {
	n, ok := c.idx.get(k)
	if !ok {
		c.misses++
		c.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	c.hits++
	c.opt.Metrics.Hit()
	return n.val, true
}

// Peek returns the value for k without promoting it or counting a hit/miss.
func (c *LRU[K, V]) Peek(k K) (V, bool) {
	if n, ok := c.idx.get(k); ok {
		return n.val, true
	}
	var zero V
	return zero, false
}

// Put inserts or updates k→v and promotes it to MRU. When a new key arrives
// at full capacity, the LRU entry is evicted first, so Len never exceeds
// the capacity.
func (c *LRU[K, V]) Put(k K, v V) {
	if n, ok := c.idx.get(k); ok {
		n.val = v
		c.moveToFront(n)
		return
	}
	if c.idx.len() >= c.cap {
		if tail := c.tail; tail != nil {
			c.evict(tail)
		}
	}
	n := &node[K, V]{key: k, val: v}
	c.idx.set(k, n)
	c.insertFront(n)
	c.opt.Metrics.Size(c.idx.len())
}

// Remove deletes k if present. Explicit removal is not an eviction.
func (c *LRU[K, V]) Remove(k K) bool {
	n, ok := c.idx.get(k)
	if !ok {
		return false
	}
	c.unlink(n)
	c.idx.del(k)
	c.opt.Metrics.Size(c.idx.len())
	return true
}

// Clear removes all entries and resets hits/misses.
func (c *LRU[K, V]) Clear() {
	c.idx.reset()
	c.head, c.tail = nil, nil
	c.hits, c.misses = 0, 0
	c.opt.Metrics.Size(0)
}

// Len returns the number of resident entries.
func (c *LRU[K, V]) Len() int { return c.idx.len() }

// Cap returns the configured capacity.
func (c *LRU[K, V]) Cap() int { return c.cap }

// Keys returns keys in MRU -> LRU order without touching recency.
func (c *LRU[K, V]) Keys() []K {
	out := make([]K, 0, c.idx.len())
	for n := c.head; n != nil; n = n.next {
		out = append(out, n.key)
	}
	return out
}

// Stats returns a snapshot of capacity, size and hit/miss counters.
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Capacity: c.cap,
		Size:     c.idx.len(),
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  hitRate(c.hits, c.misses),
	}
}

// -------------------- list internals --------------------

// insertFront inserts n at MRU in O(1).
func (c *LRU[K, V]) insertFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// moveToFront promotes n to MRU in O(1).
func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.insertFront(n)
}

// unlink detaches n from the list in O(1).
func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.head == n {
		c.head = n.next
	}
	if c.tail == n {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

// evict removes n by policy and notifies metrics and OnEvict.
func (c *LRU[K, V]) evict(n *node[K, V]) {
	c.unlink(n)
	c.idx.del(n.key)
	c.opt.Metrics.Evict(EvictCapacity)
	if cb := c.opt.OnEvict; cb != nil {
		cb(n.key, n.val, EvictCapacity)
	}
}
