package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/pprof"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/memocache/cache"
	"github.com/IvanBrykalov/memocache/memo"
	pmet "github.com/IvanBrykalov/memocache/metrics/prom"
)

type benchConfig struct {
	capacity  int
	shards    int
	workers   int
	duration  time.Duration
	readPct   int
	keys      int
	zipfS     float64
	zipfV     float64
	seed      int64
	preload   int
	memoize   bool
	httpAddr  string
	pprofAddr string
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "run a synthetic Zipf workload against a shared LRU",
		Flags: []cli.Flag{
			capacityFlag(100_000),
			&cli.IntFlag{Name: "shards", Usage: "shard count; 0 = one locked LRU", Value: 0},
			&cli.IntFlag{Name: "workers", Usage: "worker goroutines (0 = 2*GOMAXPROCS)", Value: 0},
			&cli.DurationFlag{Name: "duration", Usage: "benchmark duration", Value: 10 * time.Second},
			&cli.IntFlag{Name: "reads", Usage: "read percentage [0..100]", Value: 80},
			&cli.IntFlag{Name: "keys", Usage: "keyspace size", Value: 1_000_000},
			&cli.FloatFlag{Name: "zipf-s", Usage: "Zipf s > 1 (skew)", Value: 1.1},
			&cli.FloatFlag{Name: "zipf-v", Usage: "Zipf v >= 1", Value: 1.0},
			&cli.IntFlag{Name: "seed", Usage: "random seed (0 = time-based)", Value: 0},
			&cli.IntFlag{Name: "preload", Usage: "preload entries (0 = cap/2)", Value: 0},
			&cli.BoolFlag{Name: "memo", Usage: "read through a coalescing memoized loader instead of Get/Put"},
			&cli.StringFlag{
				Name:    "http",
				Usage:   "serve Prometheus /metrics at addr; empty = disabled",
				Sources: sources("MEMOCACHE_METRICS_ADDR", "metrics.addr"),
			},
			&cli.StringFlag{Name: "pprof", Usage: "serve pprof at addr (e.g. :6060); empty = disabled"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := benchConfig{
				capacity:  cmd.Int("cap"),
				shards:    cmd.Int("shards"),
				workers:   cmd.Int("workers"),
				duration:  cmd.Duration("duration"),
				readPct:   cmd.Int("reads"),
				keys:      cmd.Int("keys"),
				zipfS:     cmd.Float("zipf-s"),
				zipfV:     cmd.Float("zipf-v"),
				seed:      int64(cmd.Int("seed")),
				preload:   cmd.Int("preload"),
				memoize:   cmd.Bool("memo"),
				httpAddr:  cmd.String("http"),
				pprofAddr: cmd.String("pprof"),
			}
			return runBench(ctx, cfg)
		},
	}
}

type benchCounters struct {
	reads, writes, hits, misses, total, computes atomic.Uint64
}

func runBench(ctx context.Context, cfg benchConfig) error {
	if cfg.keys < 1 {
		return fmt.Errorf("keys must be >= 1, got %d", cfg.keys)
	}
	if cfg.zipfS <= 1 || cfg.zipfV < 1 {
		return fmt.Errorf("zipf requires s > 1 and v >= 1, got s=%v v=%v", cfg.zipfS, cfg.zipfV)
	}
	if cfg.workers <= 0 {
		cfg.workers = 2 * runtime.GOMAXPROCS(0)
	}
	if cfg.seed == 0 {
		cfg.seed = time.Now().UnixNano()
	}

	reg := prometheus.NewRegistry()
	metrics := pmet.New(reg, "memocache", "bench", nil)

	c, err := buildShared(cfg, metrics)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	servers := startServers(g, cfg, reg)

	pl := cfg.preload
	if pl == 0 {
		pl = cfg.capacity / 2
	}
	for i := 0; i < pl; i++ {
		c.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	var cnt benchCounters
	var load func(k string) (string, error)
	if cfg.memoize {
		m := memo.Wrap[string](c, func(args memo.Args) (string, error) {
			cnt.computes.Add(1)
			return "v:" + args.Positional[0].(string), nil
		}, memo.WithName("bench-loader"), memo.WithCoalescing())
		load = func(k string) (string, error) { return m.Call(k) }
	}

	log.WithFields(log.Fields{
		"cap":      cfg.capacity,
		"shards":   cfg.shards,
		"workers":  cfg.workers,
		"duration": cfg.duration,
		"memo":     cfg.memoize,
		"seed":     cfg.seed,
	}).Info("bench: starting")

	runCtx, cancel := context.WithTimeout(gctx, cfg.duration)
	defer cancel()

	start := time.Now()
	var workers errgroup.Group
	for w := 0; w < cfg.workers; w++ {
		workers.Go(func() error {
			// rand.Rand is not goroutine-safe: one RNG + Zipf per worker.
			r := rand.New(rand.NewSource(cfg.seed + int64(w)*9973))
			zipf := rand.NewZipf(r, cfg.zipfS, cfg.zipfV, uint64(cfg.keys-1))
			key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

			for runCtx.Err() == nil {
				cnt.total.Add(1)
				if r.Intn(100) >= cfg.readPct {
					cnt.writes.Add(1)
					c.Put(key(), "v"+strconv.Itoa(r.Int()))
					continue
				}
				cnt.reads.Add(1)
				if load != nil {
					if _, err := load(key()); err != nil {
						return err
					}
					continue
				}
				if _, ok := c.Get(key()); ok {
					cnt.hits.Add(1)
				} else {
					cnt.misses.Add(1)
				}
			}
			return nil
		})
	}
	werr := workers.Wait()
	elapsed := time.Since(start)

	report(cfg, c, &cnt, elapsed)

	for _, s := range servers {
		shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
		_ = s.Shutdown(shutdownCtx)
		done()
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return werr
}

type sharedCache interface {
	cache.Cache[string, string]
	cache.StatsReporter
	Len() int
}

func buildShared(cfg benchConfig, metrics cache.Metrics) (sharedCache, error) {
	opt := cache.Options[string, string]{Capacity: cfg.capacity, Metrics: metrics}
	if cfg.shards > 0 {
		return cache.NewShardedLRU(cfg.shards, opt)
	}
	lru, err := cache.NewLRU(opt)
	if err != nil {
		return nil, err
	}
	return cache.NewLocked[string, string](lru), nil
}

// startServers launches the optional metrics and pprof listeners on g.
func startServers(g *errgroup.Group, cfg benchConfig, reg *prometheus.Registry) []*http.Server {
	var servers []*http.Server
	serve := func(name, addr string, h http.Handler) {
		s := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
		servers = append(servers, s)
		g.Go(func() error {
			log.Infof("%s: serving at %s", name, addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server: %w", name, err)
			}
			return nil
		})
	}

	if cfg.httpAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		serve("metrics", cfg.httpAddr, mux)
	}
	if cfg.pprofAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		serve("pprof", cfg.pprofAddr, mux)
	}
	return servers
}

func report(cfg benchConfig, c sharedCache, cnt *benchCounters, elapsed time.Duration) {
	ops := cnt.total.Load()
	st := c.Stats()

	fmt.Printf("cap=%s shards=%d workers=%d keys=%s dur=%v seed=%d memo=%v\n",
		humanize.Comma(int64(cfg.capacity)), cfg.shards, cfg.workers,
		humanize.Comma(int64(cfg.keys)), elapsed.Round(time.Millisecond), cfg.seed, cfg.memoize)
	fmt.Printf("ops=%s (%s ops/s)  reads=%s  writes=%s\n",
		humanize.Comma(int64(ops)),
		humanize.CommafWithDigits(float64(ops)/elapsed.Seconds(), 0),
		humanize.Comma(int64(cnt.reads.Load())),
		humanize.Comma(int64(cnt.writes.Load())))
	if cfg.memoize {
		fmt.Printf("computes=%s\n", humanize.Comma(int64(cnt.computes.Load())))
	} else {
		fmt.Printf("worker hits=%s  misses=%s\n",
			humanize.Comma(int64(cnt.hits.Load())), humanize.Comma(int64(cnt.misses.Load())))
	}
	fmt.Printf("cache hits=%s  misses=%s  hit-rate=%.2f%%  Len()=%s\n",
		humanize.Comma(int64(st.Hits)), humanize.Comma(int64(st.Misses)),
		st.HitRate*100, humanize.Comma(int64(c.Len())))
}
