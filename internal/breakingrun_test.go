package internal

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/lustro/internal/apperr"
	"github.com/starford/lustro/internal/models"
	"github.com/starford/lustro/internal/state"
)

func tier1Sources() *Sources {
	return &Sources{WebSources: []models.Source{
		{Name: "Primary", RSS: "https://feeds.example/rss", Tier: 1, Cadence: "daily"},
	}}
}

func breakingFetcher() *fakeFetcher {
	return &fakeFetcher{feeds: map[string][]models.Article{
		"https://feeds.example/rss": {
			{Title: "Anthropic launches Claude 6 with new coding skills", Link: "https://example.com/claude6"},
			{Title: "A quiet week in machine learning research circles", Link: "https://example.com/quiet"},
		},
	}}
}

func TestBreakingRunSendsAlert(t *testing.T) {
	cfg := testConfig(t)
	sender := &fakeSender{}

	err := BreakingRun(context.Background(), BreakingOptions{},
		WithConfig(cfg), WithSources(tier1Sources()), WithLogger(discard),
		WithFetcher(breakingFetcher()), WithSender(sender), WithNow(fixedNow))
	if err != nil {
		t.Fatalf("BreakingRun: %v", err)
	}

	if len(sender.messages) != 1 {
		t.Fatalf("sent %d alerts, want 1: %v", len(sender.messages), sender.messages)
	}
	msg := sender.messages[0]
	if !strings.Contains(msg, "Anthropic launches Claude 6 with new coding skills") {
		t.Errorf("alert missing title: %q", msg)
	}
	if !strings.Contains(msg, "*Breaking:*") || !strings.Contains(msg, "Source: Primary") {
		t.Errorf("alert format wrong: %q", msg)
	}

	st := state.LoadBreaking(cfg.Paths.BreakingStatePath(), fixedNow())
	if st.AlertsToday != 1 {
		t.Errorf("alerts_today = %d, want 1", st.AlertsToday)
	}
	if len(st.SeenIDs) != 2 {
		t.Errorf("seen_ids length = %d, want 2 (both articles recorded)", len(st.SeenIDs))
	}
	if st.LastAlertTime == "" {
		t.Error("last_alert_time not recorded")
	}
	if st.LastCheck == "" {
		t.Error("last_check not recorded")
	}

	log := readFile(t, cfg.Log.Path)
	if !strings.Contains(log, "Anthropic launches Claude 6 with new coding skills") {
		t.Error("alerted story missing from news log")
	}
}

func TestBreakingRunSecondPassIsSilent(t *testing.T) {
	cfg := testConfig(t)
	first := &fakeSender{}
	opts := func(s *fakeSender, now func() time.Time) []Option {
		return []Option{
			WithConfig(cfg), WithSources(tier1Sources()), WithLogger(discard),
			WithFetcher(breakingFetcher()), WithSender(s), WithNow(now),
		}
	}
	if err := BreakingRun(context.Background(), BreakingOptions{}, opts(first, fixedNow)...); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if len(first.messages) != 1 {
		t.Fatalf("first run sent %d alerts, want 1", len(first.messages))
	}

	later := func() time.Time { return fixedNow().Add(2 * time.Hour) }
	second := &fakeSender{}
	if err := BreakingRun(context.Background(), BreakingOptions{}, opts(second, later)...); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.messages) != 0 {
		t.Errorf("second run re-alerted already-seen stories: %v", second.messages)
	}
}

func TestBreakingRunDryRun(t *testing.T) {
	cfg := testConfig(t)
	sender := &fakeSender{}

	err := BreakingRun(context.Background(), BreakingOptions{DryRun: true},
		WithConfig(cfg), WithSources(tier1Sources()), WithLogger(discard),
		WithFetcher(breakingFetcher()), WithSender(sender), WithNow(fixedNow))
	if err != nil {
		t.Fatalf("BreakingRun: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Errorf("dry run sent alerts: %v", sender.messages)
	}

	st := state.LoadBreaking(cfg.Paths.BreakingStatePath(), fixedNow())
	if st.AlertsToday != 0 {
		t.Errorf("dry run consumed alert quota: %d", st.AlertsToday)
	}
	if len(st.SeenIDs) != 2 {
		t.Errorf("dry run must still record digests, got %d", len(st.SeenIDs))
	}
	if _, err := os.Stat(cfg.Log.Path); !os.IsNotExist(err) {
		t.Error("dry run wrote to the news log")
	}
}

func TestBreakingRunDailyQuota(t *testing.T) {
	cfg := testConfig(t)
	st := state.LoadBreaking(cfg.Paths.BreakingStatePath(), fixedNow())
	st.AlertsToday = 3
	st.TodayDate = fixedNow().Format("2006-01-02")
	if err := st.Save(cfg.Paths.BreakingStatePath()); err != nil {
		t.Fatal(err)
	}

	sender := &fakeSender{}
	err := BreakingRun(context.Background(), BreakingOptions{},
		WithConfig(cfg), WithSources(tier1Sources()), WithLogger(discard),
		WithFetcher(breakingFetcher()), WithSender(sender), WithNow(fixedNow))
	if err != nil {
		t.Fatalf("BreakingRun: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Errorf("quota exhausted but alerts sent: %v", sender.messages)
	}

	after := state.LoadBreaking(cfg.Paths.BreakingStatePath(), fixedNow())
	if after.AlertsToday != 3 {
		t.Errorf("alerts_today = %d, want unchanged 3", after.AlertsToday)
	}
	if len(after.SeenIDs) != 2 {
		t.Errorf("throttled run must still record digests, got %d", len(after.SeenIDs))
	}
}

func TestBreakingRunCooldown(t *testing.T) {
	cfg := testConfig(t)
	st := state.LoadBreaking(cfg.Paths.BreakingStatePath(), fixedNow())
	st.AlertsToday = 1
	st.TodayDate = fixedNow().Format("2006-01-02")
	st.LastAlertTime = fixedNow().Add(-10 * time.Minute).Format(time.RFC3339)
	if err := st.Save(cfg.Paths.BreakingStatePath()); err != nil {
		t.Fatal(err)
	}

	sender := &fakeSender{}
	err := BreakingRun(context.Background(), BreakingOptions{},
		WithConfig(cfg), WithSources(tier1Sources()), WithLogger(discard),
		WithFetcher(breakingFetcher()), WithSender(sender), WithNow(fixedNow))
	if err != nil {
		t.Fatalf("BreakingRun: %v", err)
	}
	if len(sender.messages) != 0 {
		t.Errorf("cooldown active but alerts sent: %v", sender.messages)
	}
}

func TestBreakingRunQuotaResetsNextDay(t *testing.T) {
	cfg := testConfig(t)
	st := state.LoadBreaking(cfg.Paths.BreakingStatePath(), fixedNow())
	st.AlertsToday = 3
	st.TodayDate = "2026-08-30"
	st.LastAlertTime = "2026-08-30T23:00:00Z"
	if err := st.Save(cfg.Paths.BreakingStatePath()); err != nil {
		t.Fatal(err)
	}

	sender := &fakeSender{}
	err := BreakingRun(context.Background(), BreakingOptions{},
		WithConfig(cfg), WithSources(tier1Sources()), WithLogger(discard),
		WithFetcher(breakingFetcher()), WithSender(sender), WithNow(fixedNow))
	if err != nil {
		t.Fatalf("BreakingRun: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Errorf("sent %d alerts after day rollover, want 1", len(sender.messages))
	}

	after := state.LoadBreaking(cfg.Paths.BreakingStatePath(), fixedNow())
	if after.AlertsToday != 1 {
		t.Errorf("alerts_today = %d, want 1 after rollover", after.AlertsToday)
	}
	if after.TodayDate != "2026-08-31" {
		t.Errorf("today_date = %q, want 2026-08-31", after.TodayDate)
	}
}

func TestBreakingRunBlockedByLock(t *testing.T) {
	cfg := testConfig(t)
	lock, err := state.Acquire(cfg.Paths.BreakingStatePath())
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Release()

	err = BreakingRun(context.Background(), BreakingOptions{},
		WithConfig(cfg), WithSources(&Sources{}), WithLogger(discard),
		WithFetcher(&fakeFetcher{}), WithNow(fixedNow))
	if !errors.Is(err, apperr.ErrLocked) {
		t.Errorf("err = %v, want ErrLocked", err)
	}
}
