package cache

import (
	"strings"
	"testing"
)

// Fuzz basic Put/Get/Remove semantics under arbitrary string inputs.
// Guards against panics and ensures core invariants hold.
func FuzzLRU_PutGetRemove(f *testing.F) {
	f.Add("", "", "x")
	f.Add("a", "1", "b")
	f.Add("αβγ", "δ", "αβγ")
	f.Add("emoji🙂", "🙂🙂", "")
	f.Add("long", strings.Repeat("x", 1024), "long2")

	f.Fuzz(func(t *testing.T, k, v, other string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := mustLRU(t, Options[string, string]{Capacity: 2})

		// Put -> Get must return the same value.
		c.Put(k, v)
		got, ok := c.Get(k)
		if !ok || got != v {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// A second distinct key fits; a third evicts the LRU one.
		c.Put(other, "o")
		if other != k {
			c.Put(other+"#", "p")
			if c.Len() > 2 {
				t.Fatalf("Len %d exceeds capacity", c.Len())
			}
		}

		if c.Remove(k) {
			if _, ok := c.Get(k); ok {
				t.Fatalf("key must be absent after Remove")
			}
		}
	})
}
