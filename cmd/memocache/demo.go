package main

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/IvanBrykalov/memocache/cache"
	"github.com/IvanBrykalov/memocache/memo"
	"github.com/IvanBrykalov/memocache/metrics/logging"
)

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "walk through LRU eviction, TTL expiry and memoization",
		Flags: []cli.Flag{
			capacityFlag(2),
			&cli.DurationFlag{
				Name:    "ttl",
				Usage:   "TTL cache entry lifetime",
				Sources: sources("MEMOCACHE_TTL", "ttl.duration"),
				Value:   200 * time.Millisecond,
			},
			&cli.DurationFlag{
				Name:  "work",
				Usage: "simulated cost of one memoized computation",
				Value: 100 * time.Millisecond,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := demoLRU(cmd.Int("cap")); err != nil {
				return err
			}
			if err := demoTTL(ctx, cmd.Duration("ttl")); err != nil {
				return err
			}
			return demoMemo(cmd.Duration("work"))
		},
	}
}

func demoLRU(capacity int) error {
	c, err := cache.NewLRU[string, string](cache.Options[string, string]{
		Capacity: capacity,
		Metrics:  logging.New(nil, "lru"),
		OnEvict: func(k, _ string, r cache.EvictReason) {
			log.WithFields(log.Fields{"key": k, "reason": r}).Info("lru: evicted")
		},
	})
	if err != nil {
		return err
	}

	c.Put("a", "A")
	c.Put("b", "B")
	if v, ok := c.Get("a"); ok {
		log.Infof("lru: get a = %q (a is now most recent)", v)
	}
	c.Put("c", "C")
	if _, ok := c.Get("b"); !ok {
		log.Info("lru: get b missed")
	}
	log.WithField("keys", c.Keys()).Info("lru: MRU->LRU")
	logStats("lru", c.Stats())
	return nil
}

func demoTTL(ctx context.Context, ttl time.Duration) error {
	c, err := cache.NewTTL[string, string](cache.Options[string, string]{
		TTL:     ttl,
		Metrics: logging.New(nil, "ttl"),
	})
	if err != nil {
		return err
	}

	c.Put("session", "s-1")
	c.Put("token", "t-1")
	if v, ok := c.Get("session"); ok {
		log.Infof("ttl: fresh get session = %q", v)
	}

	t := time.NewTimer(ttl)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	if _, ok := c.Get("session"); !ok {
		log.Info("ttl: session expired and was purged on read")
	}
	log.WithField("purged", c.Cleanup()).Info("ttl: cleanup")
	logStats("ttl", c.Stats())
	return nil
}

func demoMemo(work time.Duration) error {
	c, err := cache.NewLRU[string, int](cache.Options[string, int]{Capacity: 100})
	if err != nil {
		return err
	}

	square := memo.Func1(c, func(n int) (int, error) {
		log.WithField("n", n).Info("memo: computing")
		time.Sleep(work)
		return n * n, nil
	}, memo.WithName("square"))

	for _, n := range []int{5, 5, 7, 5, 7} {
		start := time.Now()
		v, err := square(n)
		if err != nil {
			return err
		}
		log.WithFields(log.Fields{"n": n, "result": v, "took": time.Since(start).Round(time.Microsecond)}).Info("memo: call")
	}
	logStats("memo", c.Stats())
	fmt.Println("Done.")
	return nil
}

func logStats(name string, st cache.Stats) {
	log.WithFields(log.Fields{
		"capacity": st.Capacity,
		"size":     st.Size,
		"hits":     st.Hits,
		"misses":   st.Misses,
		"hit_rate": fmt.Sprintf("%.2f", st.HitRate),
	}).Info(name + ": stats")
}
