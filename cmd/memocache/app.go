package main

import (
	"context"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/IvanBrykalov/memocache/internal/config"
	mylog "github.com/IvanBrykalov/memocache/internal/log"
)

// sources chains, lowest precedence last: env var, then the YAML config key.
func sources(env, key string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(
		cli.EnvVar(env),
		yaml.YAML(key, altsrc.StringSourcer(config.Path())),
	)
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "memocache",
		Usage: "LRU/TTL caches and memoization, demonstrated and benchmarked",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "debug | info | warn | error",
				Sources: sources(mylog.EnvLevel, "log.level"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, mylog.Init(cmd.String("log-level"))
		},
		Commands: []*cli.Command{
			demoCommand(),
			benchCommand(),
			statsCommand(),
		},
	}
}

func capacityFlag(def int) cli.Flag {
	return &cli.IntFlag{
		Name:    "cap",
		Usage:   "LRU capacity (entries)",
		Sources: sources("MEMOCACHE_CAPACITY", "lru.capacity"),
		Value:   def,
	}
}
