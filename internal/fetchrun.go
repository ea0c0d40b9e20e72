package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/lustro/internal/archive"
	"github.com/starford/lustro/internal/dedup"
	"github.com/starford/lustro/internal/fetch"
	"github.com/starford/lustro/internal/models"
	"github.com/starford/lustro/internal/newslog"
	"github.com/starford/lustro/internal/schedule"
	"github.com/starford/lustro/internal/state"
)

// FetchOptions carries per-invocation flags for the daily fetch run.
type FetchOptions struct {
	NoArchive bool
}

// FetchRun executes the daily fetch: for every due source it fetches,
// filters junk and near-duplicate titles, archives tier-1 articles,
// advances per-source bookkeeping, appends the survivors to the news
// log and persists state exactly once at the end. It returns the number
// of new articles logged.
//
// A concurrent run holding the lock surfaces as apperr.ErrLocked before
// any state is touched.
func FetchRun(ctx context.Context, fo FetchOptions, opts ...Option) (int, error) {
	app, err := newApplication(opts...)
	if err != nil {
		return 0, err
	}
	cfg := app.config

	lock, err := state.Acquire(cfg.Paths.StatePath())
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	now := app.now().UTC()
	st := state.LoadFetch(cfg.Paths.StatePath())

	if err := newslog.Rotate(cfg.Log.Path, cfg.Paths.DataDir, cfg.Log.MaxLines, now, app.logger); err != nil {
		app.logger.Warn("log rotation failed", slog.String("error", err.Error()))
	}

	sinceDate := st.LastScanDate(now)
	prefixes := newslog.LoadTitlePrefixes(cfg.Log.Path)

	var store *archive.Store
	if !fo.NoArchive {
		store, err = archive.Open(cfg.Paths.ArchivePath())
		if err != nil {
			app.logger.Warn("archive unavailable, continuing without it",
				slog.String("error", err.Error()))
			store = nil
		} else {
			defer store.Close()
		}
	}

	results := map[string][]models.Article{}
	var order []string
	archived := 0

	for _, src := range app.sources.All() {
		if !schedule.IsDue(st, src.Name, src.Cadence, now) {
			continue
		}
		app.logger.Info("fetching", slog.String("source", src.Name))

		articles := app.fetchForSource(ctx, src, sinceDate, dailyMaxItems, dailyMaxItems)

		var fresh []models.Article
		for _, a := range articles {
			if dedup.IsJunk(a.Title) {
				continue
			}
			prefix := dedup.TitlePrefix(a.Title)
			if prefixes.Has(prefix) {
				continue
			}
			fresh = append(fresh, a)
			prefixes.Add(prefix)
		}

		if store != nil && src.Tier == models.Tier1 {
			for _, a := range fresh {
				if a.Link == "" {
					continue
				}
				if app.archiveArticle(ctx, store, src, a, now) {
					archived++
				}
			}
		}

		if len(fresh) > 0 {
			results[src.Name] = fresh
			order = append(order, src.Name)
			st.Touch(src.Name, now)
			st.ClearZeros(src.Name)
			continue
		}

		// First-ever attempt still advances the timestamp so the
		// cadence gate has a baseline.
		if _, tracked := st[src.Name]; !tracked {
			st.Touch(src.Name, now)
		}
		if zeros := st.BumpZeros(src.Name); zeros >= cfg.Fetch.ZeroWarnThreshold {
			app.logger.Warn("source keeps coming back empty",
				slog.String("source", src.Name),
				slog.Int("consecutive_zero_fetches", zeros))
		}
	}

	if err := st.Save(cfg.Paths.StatePath()); err != nil {
		return 0, fmt.Errorf("persist fetch state: %w", err)
	}

	if len(results) == 0 {
		app.logger.Info("no new articles found")
		return 0, nil
	}

	md := newslog.FormatDaily(results, order, now.Format("2006-01-02"))
	if err := newslog.Append(cfg.Log.Path, md); err != nil {
		return 0, fmt.Errorf("append news log: %w", err)
	}

	total := 0
	for _, articles := range results {
		total += len(articles)
	}
	app.logger.Info("logged new articles",
		slog.Int("count", total),
		slog.Int("archived", archived))
	return total, nil
}

// archiveArticle stores a tier-1 article once, extracting page text when
// the link passes the SSRF guard. Failed extraction still archives the
// record (with a nil body) so the link is never retried.
func (a *application) archiveArticle(ctx context.Context, store *archive.Store, src models.Source, art models.Article, now time.Time) bool {
	date := art.Date
	if date == "" {
		date = now.Format("2006-01-02")
	}
	key := archive.Key(date, src.Name, art.Title)

	if ok, err := store.Has(key); err != nil || ok {
		return false
	}
	if !fetch.IsSafeURL(ctx, art.Link) {
		a.logger.Warn("blocked non-public link", slog.String("link", art.Link))
		return false
	}

	var body *string
	text, err := a.fetcher.Extract(ctx, art.Link)
	if err != nil {
		a.logger.Warn("text extraction failed",
			slog.String("link", art.Link),
			slog.String("error", err.Error()))
	} else if text != "" {
		body = &text
	}

	rec := archive.Record{
		Key:       key,
		Title:     art.Title,
		Date:      date,
		Source:    src.Name,
		Tier:      src.Tier,
		Link:      art.Link,
		Summary:   art.Summary,
		Body:      body,
		FetchedAt: now,
	}
	if err := store.Insert(rec); err != nil {
		a.logger.Warn("archive insert failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return false
	}
	a.logger.Info("archived", slog.String("key", key))
	return true
}
