package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/xid"

	"github.com/apoorvalal/bsky-paperbot/internal/archive"
	"github.com/apoorvalal/bsky-paperbot/internal/bot"
	"github.com/apoorvalal/bsky-paperbot/internal/bsky"
	"github.com/apoorvalal/bsky-paperbot/internal/config"
	"github.com/apoorvalal/bsky-paperbot/internal/feed"
	"github.com/apoorvalal/bsky-paperbot/internal/infra/logging"
	"github.com/apoorvalal/bsky-paperbot/internal/render"
)

func main() {
	cfg := config.Load()
	logging.InitLogger(
		cfg.Logger.File,
		cfg.Logger.MaxSizeMB,
		cfg.Logger.MaxBackups,
		cfg.Logger.MaxAgeDays,
		cfg.Logger.Compress,
		cfg.Logger.Level,
	)
	logging.WithRunID(xid.New().String())

	if err := run(cfg); err != nil {
		logging.Error("run failed", "error", err.Error())
		os.Exit(1)
	}
}

// run executes one complete bot pass and returns when all subjects have been
// processed or the context is cancelled by a termination signal.
func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := archive.Open(cfg.Archive.Dir, cfg.Archive.Retention.Std())
	if err != nil {
		return err
	}
	defer store.Close()

	renderer := render.New(render.Options{
		EngineBin:    cfg.Render.EngineBin,
		Timeout:      time.Duration(cfg.Render.TimeoutSecs) * time.Second,
		TemplatePath: cfg.Render.TemplatePath,
		Width:        cfg.Render.Width,
		PPI:          cfg.Render.PPI,
	})
	if !renderer.EngineAvailable() {
		logging.Info("typesetting engine not found, bitmap fallback will be used", "engine", cfg.Render.EngineBin)
	}

	client := bsky.NewClient(cfg.Bluesky.PDSURL)
	if !cfg.Bluesky.DryRun {
		creds, err := config.LoadCredentials()
		if err != nil {
			return err
		}
		if err := client.CreateSession(ctx, creds.Handle, creds.AppPassword); err != nil {
			return err
		}
		logging.Info("session created", "handle", creds.Handle)
	}

	runner := bot.New(bot.Config{
		Subjects: cfg.Feed.Subjects,
		MinDelay: cfg.Bluesky.MinDelay.Std(),
		MaxDelay: cfg.Bluesky.MaxDelay.Std(),
		DryRun:   cfg.Bluesky.DryRun,
	},
		feed.NewClient(cfg.Feed.BaseURL, cfg.Feed.Timeout.Std()),
		store,
		renderer,
		client,
	)

	return runner.Run(ctx)
}
