package cache

import (
	"errors"
	"time"
)

// ErrInvalidConfiguration is returned by constructors for a non-positive LRU
// capacity or a negative TTL. No cache is returned alongside it.
var ErrInvalidConfiguration = errors.New("cache: invalid configuration")

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity means the LRU engine dropped its least-recently-used entry.
	EvictCapacity EvictReason = iota
	// EvictExpired means the TTL engine purged an entry past its deadline,
	// either lazily on Get or during Cleanup.
	EvictExpired
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures a policy engine. Zero values are safe except for the
// limit the chosen engine requires:
//   - NewLRU needs Capacity > 0
//   - NewTTL needs TTL >= 0 (0 means entries expire immediately)
//
// nil Metrics => NoopMetrics, nil Clock => time.Now().
type Options[K comparable, V any] struct {
	// Capacity is the LRU entry count limit.
	Capacity int

	// TTL is the fixed lifetime of every entry written to a TTL cache.
	TTL time.Duration

	// OnEvict is called synchronously for every eviction; keep it lightweight.
	// Explicit Remove and Clear do not trigger it.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics

	// Clock allows overriding time source (tests). Nil => time.Now().
	Clock Clock
}

// withDefaults fills nil hooks so engines never branch on them.
func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Clock == nil {
		o.Clock = wallClock{}
	}
	return o
}

type wallClock struct{}

func (wallClock) NowUnixNano() int64 { return time.Now().UnixNano() }
