// html-validate runs a document URL through the W3C Nu HTML checker and
// prints its findings.
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/webquery-dev/webquery/internal/cliutil"
	"github.com/webquery-dev/webquery/pkg/cache"
	"github.com/webquery-dev/webquery/pkg/fetch"
)

const checkerEndpoint = "https://validator.w3.org/nu/"

func main() {
	app := &cli.Command{
		Name:      "html-validate",
		Usage:     "Validate a page with the W3C Nu HTML checker",
		ArgsUsage: "<url>",
		Flags:     cliutil.Flags(1 * time.Hour),
		Action:    run,
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	manager := cliutil.NewManager(cmd, "html-validator")

	if done, err := cliutil.ClearRequested(ctx, cmd, manager); done {
		return err
	}

	target := cmd.Args().First()
	if target == "" {
		return fmt.Errorf("usage: html-validate <url>")
	}

	header := http.Header{}
	header.Set("User-Agent", "webquery-html-validate/1.0")

	data, err := manager.FetchWithCache(ctx, cache.Request{
		URL:         fmt.Sprintf("%s?doc=%s&out=json", checkerEndpoint, url.QueryEscape(target)),
		Key:         manager.Key(checkerEndpoint, map[string]string{"doc": target}),
		TTL:         cmd.Duration("ttl"),
		BypassCache: cmd.Bool("no-cache"),
		Options:     fetch.Options{Header: header},
	})
	if err != nil {
		return err
	}

	var errs, warnings int
	gjson.GetBytes(data, "messages").ForEach(func(_, msg gjson.Result) bool {
		kind := msg.Get("type").String()
		switch kind {
		case "error":
			errs++
		case "info":
			kind = "warning"
			warnings++
		}
		line := msg.Get("lastLine").Int()
		if line > 0 {
			fmt.Printf("%s (line %d): %s\n", kind, line, msg.Get("message").String())
		} else {
			fmt.Printf("%s: %s\n", kind, msg.Get("message").String())
		}
		return true
	})

	if errs == 0 && warnings == 0 {
		fmt.Printf("%s: no problems found\n", target)
		return nil
	}
	fmt.Printf("\n%d errors, %d warnings\n", errs, warnings)
	if errs > 0 {
		return cli.Exit("", 1)
	}
	return nil
}
