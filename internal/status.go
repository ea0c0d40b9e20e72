package internal

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/starford/lustro/internal/archive"
	"github.com/starford/lustro/internal/state"
)

// StatusRun prints resolved paths, state-file ages and archive size.
func StatusRun(opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config
	now := app.now()

	fmt.Printf("Lustro Status  (%s)\n", now.Format("2006-01-02 15:04 MST"))
	fmt.Println(strings.Repeat("=", 44))

	fmt.Printf("\nConfig dir:    %s\n", cfg.Paths.ConfigDir)
	fmt.Printf("Sources file:  %s\n", fileAge(cfg.Paths.SourcesFile(), now))
	fmt.Printf("State file:    %s\n", fileAge(cfg.Paths.StatePath(), now))
	fmt.Printf("News log:      %s\n", fileAge(cfg.Log.Path, now))

	st := state.LoadFetch(cfg.Paths.StatePath())
	if names := st.SourceNames(); len(names) > 0 {
		fmt.Printf("Sources:       %d tracked\n", len(names))
		var latest time.Time
		for _, name := range names {
			if t, ok := st.LastFetch(name); ok && t.After(latest) {
				latest = t
			}
		}
		if !latest.IsZero() {
			fmt.Printf("Last fetch:    %s\n", latest.Format("2006-01-02 15:04"))
		}
	}

	if store, err := archive.Open(cfg.Paths.ArchivePath()); err == nil {
		if n, err := store.Count(); err == nil {
			fmt.Printf("Article cache: %d archived\n", n)
		}
		store.Close()
	} else {
		fmt.Printf("Article cache: unavailable (%s)\n", cfg.Paths.ArchivePath())
	}

	if _, err := os.Stat(cfg.Paths.SourcesFile()); err != nil {
		fmt.Fprintln(os.Stderr, "\nRun 'lustro init' to set up configuration.")
		return fmt.Errorf("sources file missing")
	}
	return nil
}

// SourcesRun lists configured sources, optionally filtered by tier
// (tier < 0 disables the filter).
func SourcesRun(tier int, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}

	var rows [][4]string
	for _, src := range app.sources.All() {
		if tier >= 0 && src.Tier != tier {
			continue
		}
		rows = append(rows, [4]string{src.Name, src.Kind(), fmt.Sprintf("%d", src.Tier), src.Cadence})
	}
	if len(rows) == 0 {
		fmt.Println("No sources configured.")
		return nil
	}

	fmt.Printf("%-36s %-4s %4s %-12s\n", "Name", "Type", "Tier", "Cadence")
	fmt.Println(strings.Repeat("-", 64))
	for _, r := range rows {
		fmt.Printf("%-36s %-4s %4s %-12s\n", clip(r[0], 36), r[1], r[2], r[3])
	}
	fmt.Printf("\nTotal: %d sources\n", len(rows))
	return nil
}

// LogTail prints the last n non-blank-trailing lines of the news log.
func LogTail(n int, opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(app.config.Log.Path)
	if err != nil {
		return fmt.Errorf("news log not found: %s", app.config.Log.Path)
	}
	lines := strings.Split(string(data), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if n > 0 && n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	fmt.Println(strings.Join(lines, "\n"))
	return nil
}

// InitRun creates the config, cache and data directories and writes a
// starter sources.yaml when none exists.
func InitRun(opts ...Option) error {
	app, err := newApplication(opts...)
	if err != nil {
		return err
	}
	cfg := app.config

	for _, dir := range []string{cfg.Paths.ConfigDir, cfg.Paths.CacheDir, cfg.Paths.DataDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	created := "exists"
	if _, err := os.Stat(cfg.Paths.SourcesFile()); os.IsNotExist(err) {
		if err := os.WriteFile(cfg.Paths.SourcesFile(), []byte(DefaultSourcesYAML), 0o644); err != nil {
			return fmt.Errorf("write starter sources: %w", err)
		}
		created = "created"
	}

	fmt.Printf("Config directory: %s\n", cfg.Paths.ConfigDir)
	fmt.Printf("Sources file: %s (%s)\n", cfg.Paths.SourcesFile(), created)
	fmt.Printf("Cache directory: %s\n", cfg.Paths.CacheDir)
	fmt.Printf("Data directory: %s\n", cfg.Paths.DataDir)
	return nil
}

func fileAge(path string, now time.Time) string {
	info, err := os.Stat(path)
	if err != nil {
		return "missing"
	}
	delta := now.Sub(info.ModTime())
	switch {
	case delta < time.Minute:
		return "just now"
	case delta < time.Hour:
		return fmt.Sprintf("%dm ago", int(delta.Minutes()))
	case delta < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(delta.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(delta.Hours()/24))
	}
}
