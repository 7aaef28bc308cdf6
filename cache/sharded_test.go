package cache

import (
	"errors"
	"testing"
	"time"
)

func TestSharded_RoundsToPowerOfTwo(t *testing.T) {
	t.Parallel()

	s, err := NewShardedLRU[string, int](5, Options[string, int]{Capacity: 100})
	if err != nil {
		t.Fatal(err)
	}
	if s.Shards() != 8 {
		t.Fatalf("shards = %d, want 8", s.Shards())
	}
	// shards hold ceil(100/8) = 13 each, but Stats reports what was configured
	if st := s.Stats(); st.Capacity != 100 {
		t.Fatalf("capacity = %d, want 100", st.Capacity)
	}
}

// Size reaches Metrics as the total across shards, not one shard's count.
func TestShardedLRU_SizeMetricIsTotal(t *testing.T) {
	t.Parallel()

	m := newRecordingMetrics()
	s, err := NewShardedLRU[int, int](4, Options[int, int]{Capacity: 64, Metrics: m})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		s.Put(i, i)
	}
	if m.lastSize != 10 {
		t.Fatalf("size metric = %d, want 10", m.lastSize)
	}
	s.Remove(3)
	if m.lastSize != 9 {
		t.Fatalf("size metric after Remove = %d, want 9", m.lastSize)
	}
	s.Get(0)
	s.Get(3)
	if m.hits != 1 || m.misses != 1 {
		t.Fatalf("hits/misses = %d/%d", m.hits, m.misses)
	}
	s.Clear()
	if m.lastSize != 0 {
		t.Fatalf("size metric after Clear = %d, want 0", m.lastSize)
	}
}

func TestSharded_PeekDoesNotCount(t *testing.T) {
	t.Parallel()

	s, err := NewShardedLRU[string, int](2, Options[string, int]{Capacity: 8})
	if err != nil {
		t.Fatal(err)
	}
	s.Put("a", 1)
	if v, ok := s.Peek("a"); !ok || v != 1 {
		t.Fatalf("Peek a = %v ok=%v", v, ok)
	}
	if _, ok := s.Peek("b"); ok {
		t.Fatal("Peek b must miss")
	}
	if st := s.Stats(); st.Hits != 0 || st.Misses != 0 {
		t.Fatalf("Peek must not count: %+v", st)
	}
}

func TestSharded_GetPutStats(t *testing.T) {
	t.Parallel()

	s, err := NewShardedLRU[string, int](4, Options[string, int]{Capacity: 64})
	if err != nil {
		t.Fatal(err)
	}
	s.Put("a", 1)
	s.Put("b", 2)
	if v, ok := s.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v ok=%v", v, ok)
	}
	s.Get("missing")

	st := s.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 2 || st.HitRate != 0.5 {
		t.Fatalf("stats = %+v", st)
	}
	if !s.Remove("b") || s.Len() != 1 {
		t.Fatal("Remove b failed")
	}
	s.Clear()
	if s.Len() != 0 || s.Stats().Hits != 0 {
		t.Fatal("Clear must empty every shard")
	}
}

func TestSharded_TTLCleanup(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{}
	s, err := NewSharded[int, int](4, func() (Cache[int, int], error) {
		return NewTTL[int, int](Options[int, int]{TTL: time.Second, Clock: clk})
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		s.Put(i, i)
	}
	clk.add(time.Second)
	if n := s.Cleanup(); n != 20 {
		t.Fatalf("Cleanup = %d, want 20", n)
	}
}

func TestSharded_FactoryError(t *testing.T) {
	t.Parallel()

	_, err := NewShardedLRU[string, int](2, Options[string, int]{})
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("want ErrInvalidConfiguration, got %v", err)
	}
	if _, err := NewSharded[string, int](2, nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("nil factory: want ErrInvalidConfiguration, got %v", err)
	}
}

// Locked forwards optional capabilities and degrades gracefully without them.
func TestLocked_Forwarding(t *testing.T) {
	t.Parallel()

	l := NewLocked[string, int](mapCache{})
	l.Put("a", 1)
	if l.Len() != 0 || l.Stats() != (Stats{}) || l.Cleanup() != 0 || l.Remove("a") {
		t.Fatal("a bare Cache exposes no optional capabilities")
	}
	if _, ok := l.Peek("a"); ok {
		t.Fatal("Peek on a cache without Peeker must report absent")
	}

	lru := mustLRU(t, Options[string, int]{Capacity: 2})
	ll := NewLocked[string, int](lru)
	ll.Put("a", 1)
	ll.Do(func(c Cache[string, int]) {
		if _, ok := c.Get("a"); !ok {
			t.Error("Do must see the wrapped cache")
		}
	})
	if ll.Stats().Hits != 1 || ll.Len() != 1 {
		t.Fatalf("stats = %+v", ll.Stats())
	}
}

// mapCache implements only the core Cache contract.
type mapCache map[string]int

func (m mapCache) Get(k string) (int, bool) { v, ok := m[k]; return v, ok }
func (m mapCache) Put(k string, v int)      { m[k] = v }
func (m mapCache) Clear()                   { clear(m) }
