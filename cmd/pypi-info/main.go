// pypi-info prints metadata for a package from the PyPI JSON API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/webquery-dev/webquery/internal/cliutil"
	"github.com/webquery-dev/webquery/pkg/cache"
	"github.com/webquery-dev/webquery/pkg/fetch"
)

func main() {
	app := &cli.Command{
		Name:      "pypi-info",
		Usage:     "Show PyPI package metadata",
		ArgsUsage: "<package>",
		Flags: append(cliutil.Flags(6*time.Hour),
			&cli.BoolFlag{
				Name:  "files",
				Usage: "list files of the latest release",
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
	manager := cliutil.NewManager(cmd, "pypi")

	if done, err := cliutil.ClearRequested(ctx, cmd, manager); done {
		return err
	}

	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("usage: pypi-info <package>")
	}

	data, err := manager.FetchWithCache(ctx, cache.Request{
		URL:         fmt.Sprintf("https://pypi.org/pypi/%s/json", url.PathEscape(name)),
		Key:         manager.Key("pypi-info", map[string]string{"package": name}),
		TTL:         cmd.Duration("ttl"),
		BypassCache: cmd.Bool("no-cache"),
	})
	if errors.Is(err, fetch.ErrNotFound) {
		fmt.Printf("Package %q not found on PyPI\n", name)
		return nil
	}
	if err != nil {
		return err
	}

	info := gjson.GetBytes(data, "info")
	fmt.Printf("%s %s\n", info.Get("name").String(), info.Get("version").String())
	if summary := info.Get("summary").String(); summary != "" {
		fmt.Println(summary)
	}
	if rp := info.Get("requires_python").String(); rp != "" {
		fmt.Printf("Requires Python: %s\n", rp)
	}
	if home := info.Get("home_page").String(); home != "" {
		fmt.Printf("Homepage: %s\n", home)
	}
	if license := info.Get("license").String(); license != "" {
		fmt.Printf("License: %s\n", license)
	}

	if cmd.Bool("files") {
		fmt.Println("\nLatest release files:")
		gjson.GetBytes(data, "urls").ForEach(func(_, f gjson.Result) bool {
			fmt.Printf("  %s  %s\n",
				f.Get("filename").String(),
				humanize.Bytes(uint64(f.Get("size").Int())),
			)
			return true
		})
	}
	return nil
}
