package cache

import "sync"

// Locked serializes every call on an underlying cache with a single mutex.
// The engines never synchronize themselves; Locked is the opt-in way to
// share one instance between goroutines.
//
// A plain Mutex (not RWMutex) is used because LRU Get reorders the list and
// TTL Get may purge, so there are no read-only operations to share.
type Locked[K comparable, V any] struct {
	mu sync.Mutex
	c  Cache[K, V]
}

var (
	_ Cache[string, int]  = (*Locked[string, int])(nil)
	_ StatsReporter       = (*Locked[string, int])(nil)
	_ Sweeper             = (*Locked[string, int])(nil)
	_ Peeker[string, int] = (*Locked[string, int])(nil)
)

// NewLocked wraps c. The caller must not use c directly afterwards.
func NewLocked[K comparable, V any](c Cache[K, V]) *Locked[K, V] {
	return &Locked[K, V]{c: c}
}

func (l *Locked[K, V]) Get(k K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Get(k)
}

func (l *Locked[K, V]) Put(k K, v V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Put(k, v)
}

func (l *Locked[K, V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Clear()
}

// Peek forwards to the wrapped cache; a cache that cannot peek reports
// every key absent.
func (l *Locked[K, V]) Peek(k K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.c.(Peeker[K, V]); ok {
		return p.Peek(k)
	}
	var zero V
	return zero, false
}

// Remove forwards to the wrapped cache when it supports deletion.
func (l *Locked[K, V]) Remove(k K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.c.(Remover[K]); ok {
		return r.Remove(k)
	}
	return false
}

// Len forwards to the wrapped cache, or returns 0 if it cannot report size.
func (l *Locked[K, V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n, ok := l.c.(Lener); ok {
		return n.Len()
	}
	return 0
}

// Stats forwards to the wrapped cache, or returns a zero Stats.
func (l *Locked[K, V]) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.c.(StatsReporter); ok {
		return s.Stats()
	}
	return Stats{}
}

// Cleanup forwards to the wrapped cache; caches without expiry purge nothing.
func (l *Locked[K, V]) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.c.(Sweeper); ok {
		return s.Cleanup()
	}
	return 0
}

// Do runs fn with exclusive access to the wrapped cache, for compound
// operations that must not interleave with other callers.
func (l *Locked[K, V]) Do(fn func(c Cache[K, V])) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.c)
}
