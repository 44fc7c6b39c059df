// wayback-check asks the Internet Archive availability API for the
// closest archived snapshot of a URL.
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/webquery-dev/webquery/internal/cliutil"
	"github.com/webquery-dev/webquery/pkg/cache"
)

const availabilityEndpoint = "https://archive.org/wayback/available"

func main() {
	app := &cli.Command{
		Name:      "wayback-check",
		Usage:     "Find the closest Wayback Machine snapshot of a URL",
		ArgsUsage: "<url>",
		Flags: append(cliutil.Flags(12*time.Hour),
			&cli.StringFlag{
				Name:  "at",
				Usage: "preferred snapshot time as YYYYMMDD",
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
	manager := cliutil.NewManager(cmd, "wayback")

	if done, err := cliutil.ClearRequested(ctx, cmd, manager); done {
		return err
	}

	target := cmd.Args().First()
	if target == "" {
		return fmt.Errorf("usage: wayback-check <url>")
	}

	query := url.Values{"url": []string{target}}
	params := map[string]string{"url": target}
	if at := cmd.String("at"); at != "" {
		query.Set("timestamp", at)
		params["timestamp"] = at
	}

	data, err := manager.FetchWithCache(ctx, cache.Request{
		URL:         availabilityEndpoint + "?" + query.Encode(),
		Key:         manager.Key(availabilityEndpoint, params),
		TTL:         cmd.Duration("ttl"),
		BypassCache: cmd.Bool("no-cache"),
	})
	if err != nil {
		return err
	}

	closest := gjson.GetBytes(data, "archived_snapshots.closest")
	if !closest.Exists() || !closest.Get("available").Bool() {
		fmt.Printf("No archived snapshot of %s\n", target)
		return nil
	}

	when := closest.Get("timestamp").String()
	age := when
	if t, err := time.Parse("20060102150405", when); err == nil {
		age = fmt.Sprintf("%s (%s)", t.Format("2006-01-02 15:04"), humanize.Time(t))
	}

	fmt.Printf("Snapshot: %s\n", closest.Get("url").String())
	fmt.Printf("Captured: %s\n", age)
	fmt.Printf("Status:   %s\n", closest.Get("status").String())
	return nil
}
