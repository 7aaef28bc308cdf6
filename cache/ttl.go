package cache

import (
	"fmt"
	"time"
)

// TTL is a cache whose entries all live for the same fixed duration.
// Expiry is enforced lazily on Get (single entry) and in bulk by Cleanup;
// nothing runs in the background.
//
// A TTL of 0 is a valid degenerate configuration: entries expire the instant
// they are written, so every Get is a miss.
//
// TTL is not safe for concurrent use.
type TTL[K comparable, V any] struct {
	idx store[K, *entry[V]]
	ttl int64 // nanoseconds

	hits   uint64
	misses uint64

	opt Options[K, V]
}

var (
	_ Cache[string, int]  = (*TTL[string, int])(nil)
	_ StatsReporter       = (*TTL[string, int])(nil)
	_ Sweeper             = (*TTL[string, int])(nil)
	_ Peeker[string, int] = (*TTL[string, int])(nil)
)

// NewTTL constructs a TTL cache with lifetime opt.TTL.
// It returns ErrInvalidConfiguration if TTL is negative.
func NewTTL[K comparable, V any](opt Options[K, V]) (*TTL[K, V], error) {
	if opt.TTL < 0 {
		return nil, fmt.Errorf("%w: ttl must be >= 0, got %s", ErrInvalidConfiguration, opt.TTL)
	}
	return &TTL[K, V]{
		idx: newStore[K, *entry[V]](0),
		ttl: int64(opt.TTL),
		opt: opt.withDefaults(),
	}, nil
}

// Get returns the value for k while now < expiry. An expired entry is
// purged on the spot and reported as a miss.
func (c *TTL[K, V]) Get(k K) (V, bool) {
	var zero V
	e, ok := c.idx.get(k)
	if !ok {
		c.misses++
		c.opt.Metrics.Miss()
		return zero, false
	}
	if e.expired(c.opt.Clock.NowUnixNano()) {
		c.expire(k, e)
		c.misses++
		c.opt.Metrics.Miss()
		c.opt.Metrics.Size(c.idx.len())
		return zero, false
	}
	c.hits++
	c.opt.Metrics.Hit()
	return e.val, true
}

// Peek returns the value for k if it is still live. Unlike Get it neither
// counts a hit/miss nor purges an expired entry.
func (c *TTL[K, V]) Peek(k K) (V, bool) {
	e, ok := c.idx.get(k)
	if !ok || e.expired(c.opt.Clock.NowUnixNano()) {
		var zero V
		return zero, false
	}
	return e.val, true
}

// Put inserts or replaces k→v with expiry = now + TTL.
func (c *TTL[K, V]) Put(k K, v V) {
	exp := c.opt.Clock.NowUnixNano() + c.ttl
	if e, ok := c.idx.get(k); ok {
		e.val, e.exp = v, exp
		return
	}
	c.idx.set(k, &entry[V]{val: v, exp: exp})
	c.opt.Metrics.Size(c.idx.len())
}

// Cleanup purges every entry whose expiry <= now and returns the count.
// Live entries are left untouched.
func (c *TTL[K, V]) Cleanup() int {
	now := c.opt.Clock.NowUnixNano()
	removed := 0
	c.idx.each(func(k K, e *entry[V]) bool {
		if e.expired(now) {
			c.expire(k, e)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.opt.Metrics.Size(c.idx.len())
	}
	return removed
}

// Remove deletes k if present, expired or not.
func (c *TTL[K, V]) Remove(k K) bool {
	if _, ok := c.idx.get(k); !ok {
		return false
	}
	c.idx.del(k)
	c.opt.Metrics.Size(c.idx.len())
	return true
}

// Clear removes all entries and resets hits/misses.
func (c *TTL[K, V]) Clear() {
	c.idx.reset()
	c.hits, c.misses = 0, 0
	c.opt.Metrics.Size(0)
}

// Len returns the number of stored entries, including expired ones that
// have not been purged yet.
func (c *TTL[K, V]) Len() int { return c.idx.len() }

// TTL returns the configured entry lifetime.
func (c *TTL[K, V]) TTL() time.Duration { return time.Duration(c.ttl) }

// Stats returns a snapshot. Capacity is always 0 (unbounded).
func (c *TTL[K, V]) Stats() Stats {
	return Stats{
		Size:    c.idx.len(),
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: hitRate(c.hits, c.misses),
	}
}

// Expiry returns the absolute UnixNano deadline of k, if stored.
func (c *TTL[K, V]) Expiry(k K) (int64, bool) {
	e, ok := c.idx.get(k)
	if !ok {
		return 0, false
	}
	return e.exp, true
}

func (c *TTL[K, V]) expire(k K, e *entry[V]) {
	c.idx.del(k)
	c.opt.Metrics.Evict(EvictExpired)
	if cb := c.opt.OnEvict; cb != nil {
		cb(k, e.val, EvictExpired)
	}
}
