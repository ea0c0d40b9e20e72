package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/lustro/internal/models"
	"github.com/starford/lustro/internal/state"
)

// staleDays is the last-scan age beyond which a reachable source is
// flagged as stale in the health check.
const staleDays = 60

// probeConcurrency bounds the parallel health probes. The check command
// is read-only, so concurrent probing is safe; fetch runs stay strictly
// sequential.
const probeConcurrency = 8

// CheckRun probes every configured source and prints a reachability
// table: HTTP status, last-scan age, broken and stale flags.
func CheckRun(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	st := state.LoadFetch(app.config.Paths.StatePath())
	now := app.now().UTC()

	var web, accounts []models.Source
	for _, src := range app.sources.All() {
		if src.Handle != "" || src.Bookmarks {
			accounts = append(accounts, src)
		} else {
			web = append(web, src)
		}
	}

	codes := make([]string, len(web))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i, src := range web {
		i, src := i, src
		g.Go(func() error {
			if src.Endpoint() == "" {
				codes[i] = "-"
				return nil
			}
			codes[i] = app.fetcher.Probe(gctx, src.Endpoint())
			return nil
		})
	}
	_ = g.Wait()

	fmt.Printf("\n%-36s %1s %5s %12s\n", "Source", "T", "HTTP", "Last Scan")
	fmt.Println(strings.Repeat("-", 58))

	var broken, stale []string
	for i, src := range web {
		scanCol, ageDays := lastScanAge(st, src.Name, now)
		code := codes[i]

		flag := ""
		switch {
		case code != "-" && code != "200" && code != "301" && code != "302":
			broken = append(broken, src.Name)
			flag = " <-"
		case ageDays > staleDays:
			stale = append(stale, src.Name)
			flag = " (stale)"
		}
		fmt.Printf("%-36s %1d %5s %12s%s\n", clip(src.Name, 35), src.Tier, code, scanCol, flag)
	}

	if len(accounts) > 0 {
		fmt.Printf("\n%-25s %1s %8s %12s\n", "X Account", "T", "Status", "Last Post")
		fmt.Println(strings.Repeat("-", 50))
		for _, src := range accounts {
			var label string
			var posts []models.Article
			var err error
			if src.Bookmarks {
				label = src.Name
				posts, err = app.fetcher.Bookmarks(ctx, "", 1)
			} else {
				label = "@" + strings.TrimPrefix(src.Handle, "@")
				posts, err = app.fetcher.Timeline(ctx, src.Handle, "", 1)
			}
			switch {
			case err != nil:
				fmt.Printf("%-25s %1d %8s %12s\n", clip(label, 25), src.Tier, "FAIL", "-")
			case len(posts) == 0:
				fmt.Printf("%-25s %1d %8s %12s\n", clip(label, 25), src.Tier, "empty", "-")
			default:
				fmt.Printf("%-25s %1d %8s %12s\n", clip(label, 25), src.Tier, "OK", posts[0].Date)
			}
		}
	}

	fmt.Printf("\nTotal: %d web/RSS + %d X accounts\n", len(web), len(accounts))
	if len(broken) > 0 {
		fmt.Printf("Broken (%d): %s\n", len(broken), strings.Join(broken, ", "))
	}
	if len(stale) > 0 {
		fmt.Printf("Stale >%dd (%d): %s\n", staleDays, len(stale), strings.Join(stale, ", "))
	}
	return nil
}

// lastScanAge formats the last-fetch age for display and returns it in
// days (0 when unknown or unparseable).
func lastScanAge(st state.FetchState, name string, now time.Time) (string, int) {
	raw, ok := st[name]
	if !ok || raw == "" {
		return "never", 0
	}
	last, ok := state.ParseTime(raw)
	if !ok {
		return "parse-err", 0
	}
	days := int(now.Sub(last).Hours() / 24)
	return fmt.Sprintf("%dd ago", days), days
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
