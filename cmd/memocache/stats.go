package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/IvanBrykalov/memocache/cache"
)

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "drive one LRU (and one TTL cache) single-threaded and print their stats as JSON",
		Flags: []cli.Flag{
			capacityFlag(1_000),
			&cli.IntFlag{Name: "ops", Usage: "operations to run", Value: 100_000},
			&cli.IntFlag{Name: "keys", Usage: "uniform keyspace size", Value: 2_000},
			&cli.IntFlag{Name: "seed", Usage: "random seed", Value: 1},
			&cli.DurationFlag{
				Name:    "ttl",
				Usage:   "TTL cache entry lifetime, in simulated time (one op = 1ms)",
				Sources: sources("MEMOCACHE_TTL", "ttl.duration"),
				Value:   time.Second,
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			return runStats(os.Stdout, cmd.Int("cap"), cmd.Int("ops"), cmd.Int("keys"), int64(cmd.Int("seed")), cmd.Duration("ttl"))
		},
	}
}

type statsReport struct {
	LRU         cache.Stats `json:"lru"`
	TTL         cache.Stats `json:"ttl"`
	TTLSwept    int         `json:"ttl_swept"`
	Evictions   int         `json:"lru_evictions"`
	Expirations int         `json:"ttl_expirations"`
}

// tickClock advances one millisecond per operation so TTL results are
// reproducible for a given seed.
type tickClock struct{ now int64 }

func (c *tickClock) NowUnixNano() int64 { return c.now }

func runStats(w io.Writer, capacity, ops, keys int, seed int64, ttl time.Duration) error {
	if keys < 1 {
		return fmt.Errorf("keys must be >= 1, got %d", keys)
	}
	var rep statsReport

	lru, err := cache.NewLRU[string, int](cache.Options[string, int]{
		Capacity: capacity,
		OnEvict:  func(string, int, cache.EvictReason) { rep.Evictions++ },
	})
	if err != nil {
		return err
	}
	clk := &tickClock{}
	exp, err := cache.NewTTL[string, int](cache.Options[string, int]{
		TTL:     ttl,
		Clock:   clk,
		OnEvict: func(string, int, cache.EvictReason) { rep.Expirations++ },
	})
	if err != nil {
		return err
	}

	r := rand.New(rand.NewSource(seed))
	for i := 0; i < ops; i++ {
		clk.now += int64(time.Millisecond)
		k := "k:" + strconv.Itoa(r.Intn(keys))
		for _, c := range []cache.Cache[string, int]{lru, exp} {
			if _, ok := c.Get(k); !ok {
				c.Put(k, i)
			}
		}
	}
	rep.TTLSwept = exp.Cleanup()
	rep.LRU = lru.Stats()
	rep.TTL = exp.Stats()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
