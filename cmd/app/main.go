package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/lustro/internal"
	"github.com/starford/lustro/internal/apperr"
	pkgconfig "github.com/starford/lustro/pkg/config"
)

// exitLocked is the distinct exit status for a run that found another
// process holding the state lock.
const exitLocked = 2

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	path := cmd.String("config")
	if path == "" {
		path = cfg.Paths.ConfigFile()
	}
	if err := pkgconfig.LoadOptional(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "lustro",
		Usage: "Survey and illuminate the AI/tech landscape",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "<config-dir>/config.yaml",
				Sources:     cli.EnvVars("LUSTRO_CONFIG_FILE"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			// Bare `lustro` runs the daily fetch.
			return runFetch(ctx, cmd, false)
		},
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Run the daily fetch",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-archive", Usage: "Skip archiving full article text"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runFetch(ctx, cmd, cmd.Bool("no-archive"))
				},
			},
			{
				Name:  "breaking",
				Usage: "Check tier-1 sources for breaking AI news",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "Classify and record but send nothing"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.BreakingRun(ctx,
						internal.BreakingOptions{DryRun: cmd.Bool("dry-run")},
						internal.WithConfig(cfg))
				},
			},
			{
				Name:  "check",
				Usage: "Health-check configured sources",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.CheckRun(ctx, internal.WithConfig(cfg))
				},
			},
			{
				Name:  "sources",
				Usage: "List configured sources",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "tier", Value: -1, Usage: "Filter sources by tier"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.SourcesRun(int(cmd.Int("tier")), internal.WithConfig(cfg))
				},
			},
			{
				Name:  "status",
				Usage: "Show paths and state ages",
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.StatusRun(internal.WithConfig(cfg))
				},
			},
			{
				Name:  "log",
				Usage: "Tail the news log",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "lines", Aliases: []string{"n"}, Value: 50, Usage: "Number of lines"},
				},
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.LogTail(int(cmd.Int("lines")), internal.WithConfig(cfg))
				},
			},
			{
				Name:  "init",
				Usage: "Create config/cache/data dirs and a starter sources file",
				Action: func(_ context.Context, cmd *cli.Command) error {
					cfg, err := loadConfig(cmd)
					if err != nil {
						return err
					}
					return internal.InitRun(internal.WithConfig(cfg))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		if errors.Is(err, apperr.ErrLocked) {
			os.Exit(exitLocked)
		}
		os.Exit(1)
	}
}

func runFetch(ctx context.Context, cmd *cli.Command, noArchive bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	count, err := internal.FetchRun(ctx,
		internal.FetchOptions{NoArchive: noArchive},
		internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	fmt.Printf("%d new articles\n", count)
	return nil
}
