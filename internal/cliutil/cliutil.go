// Package cliutil carries the flag set and wiring shared by the webquery
// command-line tools. Every tool builds a cache.Manager bound to its own
// namespace and talks to upstream APIs only through that facade.
package cliutil

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/webquery-dev/webquery/pkg/cache"
	"github.com/webquery-dev/webquery/pkg/fetch"
	"github.com/webquery-dev/webquery/pkg/logging"
)

// Flags returns the flag set common to all tools.
func Flags(defaultTTL time.Duration) []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:  "ttl",
			Value: defaultTTL,
			Usage: "how long cached responses stay fresh",
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "bypass the cache and always hit the upstream API",
		},
		&cli.BoolFlag{
			Name:  "clear-cache",
			Usage: "remove this tool's cached responses and exit",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 30 * time.Second,
			Usage: "per-request HTTP timeout",
		},
		&cli.StringFlag{
			Name:  "redis",
			Usage: "redis address for a shared cache (default: local files)",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "log cache and retry activity",
		},
	}
}

// NewManager builds the cache manager for a tool from its parsed flags.
func NewManager(cmd *cli.Command, namespace string) *cache.Manager {
	level := logging.LevelWarn
	if cmd.Bool("debug") {
		level = logging.LevelDebug
	}
	logging.Setup(logging.Config{Level: level, Pretty: true})

	cfg := cache.Config{
		Namespace:  namespace,
		DefaultTTL: cmd.Duration("ttl"),
		Fetcher:    fetch.New(&http.Client{Timeout: cmd.Duration("timeout")}),
	}

	if addr := cmd.String("redis"); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr})
		cfg.Store = cache.NewRedisStore(client, namespace)
	}

	return cache.NewManager(cfg)
}

// ClearRequested handles --clear-cache; it reports whether the command
// should exit afterwards.
func ClearRequested(ctx context.Context, cmd *cli.Command, m *cache.Manager) (bool, error) {
	if !cmd.Bool("clear-cache") {
		return false, nil
	}
	n, err := m.ClearCache(ctx)
	if err != nil {
		return true, err
	}
	fmt.Printf("Removed %d cached entries\n", n)
	return true, nil
}
