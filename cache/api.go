package cache

// Cache is the minimal key/value contract shared by the policy engines
// (LRU, TTL) and the synchronized wrappers. The memo package depends only
// on this interface.
//
// The engines themselves are NOT safe for concurrent use; wrap them with
// NewLocked or NewSharded when more than one goroutine drives a cache.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a presence flag.
	// A miss is a normal return (zero V, false), never an error.
	Get(k K) (V, bool)

	// Put inserts or replaces k→v and refreshes the entry
	// (recency for LRU, expiry for TTL).
	Put(k K, v V)

	// Clear removes all entries. Engines that keep statistics reset them.
	Clear()
}

// StatsReporter is implemented by caches that keep hit/miss accounting.
type StatsReporter interface {
	Stats() Stats
}

// Sweeper is implemented by caches that support an explicit expiry sweep.
type Sweeper interface {
	// Cleanup purges every expired entry and returns how many were removed.
	Cleanup() int
}

// Remover is implemented by caches that support explicit deletion.
type Remover[K comparable] interface {
	Remove(k K) bool
}

// Peeker is implemented by caches that can look up a key without side
// effects: no hit/miss accounting, no recency change and no expiry purge.
type Peeker[K comparable, V any] interface {
	Peek(k K) (V, bool)
}

// Lener is implemented by caches that can report their resident entry count.
type Lener interface {
	Len() int
}

// Stats is a point-in-time snapshot of cache accounting.
// Capacity is 0 for caches without an entry limit (TTL).
type Stats struct {
	Capacity int     `json:"capacity"`
	Size     int     `json:"size"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
}

// hitRate returns hits/(hits+misses), or 0 when nothing was accessed yet.
func hitRate(hits, misses uint64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
