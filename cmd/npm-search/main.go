// npm-search queries the npm registry full-text search API and prints
// matching packages.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/webquery-dev/webquery/internal/cliutil"
	"github.com/webquery-dev/webquery/pkg/cache"
)

const searchEndpoint = "https://registry.npmjs.org/-/v1/search"

func main() {
	app := &cli.Command{
		Name:      "npm-search",
		Usage:     "Search the npm registry",
		ArgsUsage: "<query>",
		Flags: append(cliutil.Flags(1*time.Hour),
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Value:   10,
				Usage:   "maximum number of results",
			},
		),
		Action: run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	manager := cliutil.NewManager(cmd, "npm-registry")

	if done, err := cliutil.ClearRequested(ctx, cmd, manager); done {
		return err
	}

	query := cmd.Args().First()
	if query == "" {
		return fmt.Errorf("usage: npm-search <query>")
	}
	limit := cmd.Int("limit")

	data, err := manager.FetchWithCache(ctx, cache.Request{
		URL: fmt.Sprintf("%s?text=%s&size=%d", searchEndpoint, url.QueryEscape(query), limit),
		Key: manager.Key(searchEndpoint, map[string]string{
			"text": query,
			"size": strconv.Itoa(int(limit)),
		}),
		TTL:         cmd.Duration("ttl"),
		BypassCache: cmd.Bool("no-cache"),
	})
	if err != nil {
		return err
	}

	objects := gjson.GetBytes(data, "objects")
	if !objects.Exists() || len(objects.Array()) == 0 {
		fmt.Printf("No packages matching %q\n", query)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PACKAGE\tVERSION\tPUBLISHED\tDESCRIPTION")
	objects.ForEach(func(_, obj gjson.Result) bool {
		pkg := obj.Get("package")
		published := pkg.Get("date").String()
		if t, err := time.Parse(time.RFC3339, published); err == nil {
			published = humanize.Time(t)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			pkg.Get("name").String(),
			pkg.Get("version").String(),
			published,
			truncate(pkg.Get("description").String(), 60),
		)
		return true
	})
	return w.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
