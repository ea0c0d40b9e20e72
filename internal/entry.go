// Package internal wires configuration, collaborators and run state
// into the fetch and breaking-news orchestrations.
package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/starford/lustro/internal/fetch"
	"github.com/starford/lustro/internal/models"
	"github.com/starford/lustro/internal/notify"
)

// Per-run fetch limits. The breaking path scans deeper than the daily
// path because it runs more often and dedups by digest.
const (
	dailyMaxItems       = 5
	breakingFeedItems   = 10
	breakingPageItems   = 8
	breakingLookbackDay = 2
)

func newApplication(opts ...Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.sources == nil {
		s, err := LoadSources(app.config.Paths.SourcesFile())
		if err != nil {
			return nil, fmt.Errorf("load sources: %w", err)
		}
		app.sources = s
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	if app.fetcher == nil {
		app.fetcher = fetch.NewClient(app.logger, app.config.Fetch.BirdPath)
	}
	if app.sender == nil {
		app.sender = notify.NewScript(app.config.Notify.Script, app.logger)
	}
	if app.now == nil {
		app.now = time.Now
	}
	return app, nil
}

// fetchForSource dispatches to the right transport for a source. A feed
// error falls back to page scraping when the source also configures a
// URL; any remaining failure is logged and yields zero articles — a
// broken source never fails the run.
func (a *application) fetchForSource(ctx context.Context, src models.Source, sinceDate string, feedItems, pageItems int) []models.Article {
	var articles []models.Article
	var err error

	switch {
	case src.Bookmarks:
		articles, err = a.fetcher.Bookmarks(ctx, sinceDate, feedItems)
	case src.RSS != "":
		articles, err = a.fetcher.Feed(ctx, src.RSS, sinceDate, feedItems)
		if err != nil && src.URL != "" {
			a.logger.Info("feed unreachable, falling back to web",
				slog.String("source", src.Name),
				slog.String("url", src.URL))
			articles, err = a.fetcher.Page(ctx, src.URL, pageItems)
		}
	case src.Handle != "":
		articles, err = a.fetcher.Timeline(ctx, src.Handle, sinceDate, feedItems)
	default:
		articles, err = a.fetcher.Page(ctx, src.URL, pageItems)
	}

	if err != nil {
		a.logger.Warn("fetch failed",
			slog.String("source", src.Name),
			slog.String("error", err.Error()))
		return nil
	}
	return articles
}
