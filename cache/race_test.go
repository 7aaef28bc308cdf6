package cache

import (
	"math/rand"
	"runtime"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// A mixed workload of concurrent Put/Get/Remove/Cleanup through Locked.
// Should pass under `-race` without detector reports.
func TestRace_Locked(t *testing.T) {
	clk := &atomicClock{}
	ttl := mustTTL(t, Options[string, []byte]{TTL: 20 * time.Millisecond, Clock: clk})
	lru := mustLRU(t, Options[string, []byte]{Capacity: 512})

	for _, c := range []*Locked[string, []byte]{NewLocked[string, []byte](ttl), NewLocked[string, []byte](lru)} {
		runMixed(t, c, func() { clk.add(time.Millisecond) })
		if st := c.Stats(); st.Hits+st.Misses == 0 {
			t.Fatal("expected some accounted reads")
		}
	}
	if lru.Len() > 512 {
		t.Fatalf("capacity exceeded: %d", lru.Len())
	}
}

func TestRace_Sharded(t *testing.T) {
	s, err := NewShardedLRU[string, []byte](16, Options[string, []byte]{Capacity: 4_096})
	if err != nil {
		t.Fatal(err)
	}
	runMixed(t, s, func() {})
	if s.Len() > s.Stats().Capacity {
		t.Fatalf("capacity exceeded: %d > %d", s.Len(), s.Stats().Capacity)
	}
}

type mixedCache interface {
	Cache[string, []byte]
	Remover[string]
	Sweeper
}

func runMixed(t *testing.T, c mixedCache, tick func()) {
	t.Helper()

	workers := 4 * runtime.GOMAXPROCS(0)
	const opsPerWorker = 5_000
	const keyspace = 2_000

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			r := rand.New(rand.NewSource(int64(w)*9973 + 1))
			for i := 0; i < opsPerWorker; i++ {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4: // ~5% Remove
					c.Remove(k)
				case 5: // ~1% Cleanup + clock tick
					tick()
					c.Cleanup()
				case 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19: // ~14% Put
					c.Put(k, []byte("x"))
				default: // ~80% Get
					c.Get(k)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

// atomicClock is a fakeClock that tolerates concurrent ticks.
type atomicClock struct{ t atomic.Int64 }

func (c *atomicClock) NowUnixNano() int64  { return c.t.Load() }
func (c *atomicClock) add(d time.Duration) { c.t.Add(int64(d)) }
