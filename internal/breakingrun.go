package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/lustro/internal/breaking"
	"github.com/starford/lustro/internal/dedup"
	"github.com/starford/lustro/internal/newslog"
	"github.com/starford/lustro/internal/state"
)

// BreakingOptions carries per-invocation flags for the breaking-news run.
type BreakingOptions struct {
	// DryRun classifies and records seen digests but sends no alerts
	// and appends nothing to the news log.
	DryRun bool
}

// BreakingRun executes the breaking-news check over tier-1 sources:
// fetch, digest-dedup, classify, throttle, dispatch. State (the bounded
// seen-digest ring and throttle bookkeeping) is persisted exactly once
// at the end of the run, in dry-run mode too.
func BreakingRun(ctx context.Context, bo BreakingOptions, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	statePath := cfg.Paths.BreakingStatePath()

	lock, err := state.Acquire(statePath)
	if err != nil {
		return err
	}
	defer lock.Release()

	now := app.now().UTC()
	st := state.LoadBreaking(statePath, now)
	breaking.ResetDailyCounter(st, now)

	seen := dedup.NewSeenSet(breaking.MaxSeenIDs, st.SeenIDs)
	sinceDate := now.AddDate(0, 0, -breakingLookbackDay).Format("2006-01-02")
	vocab := breaking.DefaultVocabulary()

	app.logger.Info("breaking news check", slog.String("at", now.Format("2006-01-02 15:04 MST")))

	var matches []newslog.Match
	for _, src := range app.sources.Tier1Candidates() {
		articles := app.fetchForSource(ctx, src, sinceDate, breakingFeedItems, breakingPageItems)
		for _, a := range articles {
			if a.Title == "" {
				continue
			}
			digest := dedup.Digest(a.Title, a.Link, src.Name)
			if seen.Contains(digest) {
				continue
			}
			seen.Add(digest)
			if vocab.IsBreaking(a.Title) {
				matches = append(matches, newslog.Match{
					Title:  a.Title,
					Link:   a.Link,
					Source: src.Name,
				})
			}
		}
	}

	st.SeenIDs = seen.IDs()
	st.LastCheck = now.Format(time.RFC3339)

	if len(matches) == 0 {
		app.logger.Info("no breaking news")
		return st.Save(statePath)
	}
	app.logger.Info("breaking matches found", slog.Int("count", len(matches)))

	var sent []newslog.Match
	for _, m := range matches {
		if !bo.DryRun && !breaking.CanAlert(st, now) {
			app.logger.Info("throttled", slog.String("title", m.Title))
			continue
		}
		app.dispatchAlert(ctx, m, now, bo.DryRun)
		if !bo.DryRun {
			breaking.RecordAlert(st, now)
			sent = append(sent, m)
		}
	}

	if !bo.DryRun && len(sent) > 0 {
		md := newslog.FormatBreaking(sent, now.Format("2006-01-02"))
		if err := newslog.Append(cfg.Log.Path, md); err != nil {
			app.logger.Warn("breaking log append failed", slog.String("error", err.Error()))
		}
	}

	if err := st.Save(statePath); err != nil {
		return fmt.Errorf("persist breaking state: %w", err)
	}
	return nil
}

// dispatchAlert formats and sends one alert. In dry-run mode the message
// is only logged. Send failures are already logged by the sender and
// never fail the run.
func (a *application) dispatchAlert(ctx context.Context, m newslog.Match, now time.Time, dryRun bool) {
	var msg string
	if m.Link != "" {
		msg = fmt.Sprintf("🚨 *Breaking:* [%s](%s)\nSource: %s • %s UTC", m.Title, m.Link, m.Source, now.Format("15:04"))
	} else {
		msg = fmt.Sprintf("🚨 *Breaking:* %s\nSource: %s • %s UTC", m.Title, m.Source, now.Format("15:04"))
	}

	if dryRun {
		a.logger.Info("dry run, not sending", slog.String("message", msg))
		return
	}
	_ = a.sender.Send(ctx, msg)
}
