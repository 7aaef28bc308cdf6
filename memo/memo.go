// Package memo wraps deterministic computations with a cache.Cache.
//
// A Memoized derives a canonical key from the computation's identity and
// its arguments (see Key), returns the cached value on a hit, and otherwise
// runs the computation and stores a successful result.
//
// The adapter assumes purity. Side effects of the wrapped function are
// skipped on a hit; that is the contract, not a bug. Errors returned by the
// computation are propagated and never cached.
package memo

import (
	"reflect"
	"runtime"

	"golang.org/x/sync/singleflight"

	"github.com/IvanBrykalov/memocache/cache"
)

// Func is a computation over one invocation's arguments.
type Func[V any] func(Args) (V, error)

// Memoized is the adapter returned by Wrap. It is as safe for concurrent
// use as the cache it was given.
type Memoized[V any] struct {
	name  string
	fn    Func[V]
	cache cache.Cache[string, V]

	// group is non-nil when coalescing is enabled.
	group *singleflight.Group
}

// Option customizes a Memoized.
type Option func(*settings)

type settings struct {
	name     string
	coalesce bool
}

// WithName sets the identity used in every key. Two adapters sharing one
// cache must have distinct names. Defaults to the runtime symbol name of the
// wrapped function, which is ambiguous for closures created at the same site.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithCoalescing makes concurrent misses for the same key share a single
// computation. The cache must be synchronized (cache.NewLocked/NewSharded).
// Caches implementing cache.Peeker also skip a recompute when a previous
// flight filled the key just before this one started.
func WithCoalescing() Option {
	return func(s *settings) { s.coalesce = true }
}

// Wrap returns a memoized view of fn backed by c.
func Wrap[V any](c cache.Cache[string, V], fn Func[V], opts ...Option) *Memoized[V] {
	return wrap(c, fn, funcName(fn), opts)
}

func wrap[V any](c cache.Cache[string, V], fn Func[V], defaultName string, opts []Option) *Memoized[V] {
	s := settings{name: defaultName}
	for _, o := range opts {
		o(&s)
	}
	m := &Memoized[V]{name: s.name, fn: fn, cache: c}
	if s.coalesce {
		m.group = &singleflight.Group{}
	}
	return m
}

// Invoke returns fn(args), consulting the cache first.
// A key derivation failure is returned wrapped in ErrKeyDerivation and fn is
// not called.
func (m *Memoized[V]) Invoke(args Args) (V, error) {
	key, err := Key(m.name, args)
	if err != nil {
		var zero V
		return zero, err
	}
	if v, ok := m.cache.Get(key); ok {
		return v, nil
	}
	if m.group == nil {
		return m.compute(key, args)
	}

	res, err, _ := m.group.Do(key, func() (any, error) {
		// another flight may have filled the cache between Get and Do;
		// Peek keeps that recheck out of the hit/miss counters
		if v, ok := m.peek(key); ok {
			return v, nil
		}
		return m.compute(key, args)
	})
	v, _ := res.(V)
	return v, err
}

// Call is Invoke with positional arguments only.
func (m *Memoized[V]) Call(positional ...any) (V, error) {
	return m.Invoke(Args{Positional: positional})
}

// Clear empties the underlying cache.
func (m *Memoized[V]) Clear() { m.cache.Clear() }

// Stats returns the underlying cache's statistics, if it keeps any.
func (m *Memoized[V]) Stats() (cache.Stats, bool) {
	if s, ok := m.cache.(cache.StatsReporter); ok {
		return s.Stats(), true
	}
	return cache.Stats{}, false
}

// Name returns the identity used in keys.
func (m *Memoized[V]) Name() string { return m.name }

// Cache returns the backing cache.
func (m *Memoized[V]) Cache() cache.Cache[string, V] { return m.cache }

func (m *Memoized[V]) peek(key string) (V, bool) {
	if p, ok := m.cache.(cache.Peeker[string, V]); ok {
		return p.Peek(key)
	}
	var zero V
	return zero, false
}

func (m *Memoized[V]) compute(key string, args Args) (V, error) {
	v, err := m.fn(args)
	if err != nil {
		return v, err
	}
	m.cache.Put(key, v)
	return v, nil
}

// funcName returns the runtime symbol of a func value, e.g. "main.square".
func funcName(fn any) string {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return ""
	}
	if f := runtime.FuncForPC(rv.Pointer()); f != nil {
		return f.Name()
	}
	return ""
}
