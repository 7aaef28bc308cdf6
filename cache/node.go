package cache

// node is an intrusive doubly linked list element owned by an LRU cache.
// head is MRU, tail is LRU.
type node[K comparable, V any] struct {
	key K
	val V

	prev *node[K, V]
	next *node[K, V]
}

// entry is a TTL cache slot. exp is an absolute UnixNano deadline;
// the entry is logically absent once now >= exp.
type entry[V any] struct {
	val V
	exp int64
}

func (e *entry[V]) expired(now int64) bool { return now >= e.exp }
