package cache

// store is the policy-agnostic entry index shared by both engines.
// It only maps keys to entries; ordering and expiry live in the engines.
type store[K comparable, E any] struct {
	m map[K]E
}

func newStore[K comparable, E any](hint int) store[K, E] {
	return store[K, E]{m: make(map[K]E, hint)}
}

func (s *store[K, E]) get(k K) (E, bool) {
	e, ok := s.m[k]
	return e, ok
}

func (s *store[K, E]) set(k K, e E) { s.m[k] = e }

func (s *store[K, E]) del(k K) { delete(s.m, k) }

func (s *store[K, E]) len() int { return len(s.m) }

// reset drops every entry. clear keeps the map's buckets for reuse.
func (s *store[K, E]) reset() { clear(s.m) }

// each visits entries in unspecified order until fn returns false.
// Deleting the visited key from inside fn is allowed.
func (s *store[K, E]) each(fn func(K, E) bool) {
	for k, e := range s.m {
		if !fn(k, e) {
			return
		}
	}
}
