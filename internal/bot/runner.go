// Package bot wires the feed, archive, renderer, and Bluesky client into a
// single run-to-completion pass.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/apoorvalal/bsky-paperbot/internal/bsky"
	"github.com/apoorvalal/bsky-paperbot/internal/feed"
	"github.com/apoorvalal/bsky-paperbot/internal/infra/logging"
	"github.com/apoorvalal/bsky-paperbot/internal/render"
)

// Feed lists new entries for a subject.
type Feed interface {
	Fetch(ctx context.Context, subject string) ([]feed.Entry, error)
}

// Archive records which entries have been posted.
type Archive interface {
	Seen(id string) (bool, error)
	MarkPosted(id string) error
}

// Renderer produces the summary image for a paper.
type Renderer interface {
	Render(ctx context.Context, req render.Request) ([]byte, error)
}

// Poster publishes to the social network.
type Poster interface {
	UploadBlob(ctx context.Context, data []byte, contentType string) (json.RawMessage, error)
	CreatePost(ctx context.Context, text string, image *bsky.Image) error
}

// Config holds runner behavior knobs.
type Config struct {
	Subjects []string
	MinDelay time.Duration
	MaxDelay time.Duration
	DryRun   bool
}

// Runner executes one bot pass over all configured subjects.
type Runner struct {
	cfg      Config
	feed     Feed
	archive  Archive
	renderer Renderer
	poster   Poster
}

// New assembles a Runner.
func New(cfg Config, f Feed, a Archive, r Renderer, p Poster) *Runner {
	return &Runner{cfg: cfg, feed: f, archive: a, renderer: r, poster: p}
}

// Run processes every subject once. Per-entry failures are logged and
// skipped; only context cancellation aborts the pass.
func (r *Runner) Run(ctx context.Context) error {
	posted := 0
	for _, subject := range r.cfg.Subjects {
		entries, err := r.feed.Fetch(ctx, subject)
		if err != nil {
			logging.Error("feed fetch failed", "subject", subject, "error", err.Error())
			continue
		}
		logging.Info("feed fetched", "subject", subject, "entries", len(entries))

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := r.processEntry(ctx, entry)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logging.Error("entry failed", "id", entry.ID, "error", err.Error())
				continue
			}
			if !ok {
				continue
			}
			posted++
			if err := r.pause(ctx); err != nil {
				return err
			}
		}
	}
	logging.Info("run complete", "posted", posted)
	return nil
}

// processEntry posts one entry. Returns false when the entry was skipped
// (already posted or dry run).
func (r *Runner) processEntry(ctx context.Context, entry feed.Entry) (bool, error) {
	seen, err := r.archive.Seen(entry.ID)
	if err != nil {
		return false, fmt.Errorf("archive lookup: %w", err)
	}
	if seen {
		logging.Debug("already posted", "id", entry.ID)
		return false, nil
	}

	text := composeText(entry)

	if r.cfg.DryRun {
		logging.Info("dry run, skipping post", "id", entry.ID, "text", text)
		return false, nil
	}

	image := r.renderImage(ctx, entry)
	if err := r.poster.CreatePost(ctx, text, image); err != nil {
		return false, fmt.Errorf("create post: %w", err)
	}
	if err := r.archive.MarkPosted(entry.ID); err != nil {
		// The post went out; a failed mark means a possible repost next run,
		// which is preferable to losing posts.
		logging.Warn("failed to mark entry as posted", "id", entry.ID, "error", err.Error())
	}
	logging.Info("posted", "id", entry.ID, "title", entry.Title)
	return true, nil
}

// renderImage renders and uploads the summary image. Any failure here
// degrades the post to text-only rather than dropping the entry.
func (r *Runner) renderImage(ctx context.Context, entry feed.Entry) *bsky.Image {
	png, err := r.renderer.Render(ctx, render.Request{
		Title:    entry.Title,
		Authors:  entry.Authors,
		Abstract: entry.Abstract,
	})
	if err != nil {
		logging.Warn("render failed, posting without image", "id", entry.ID, "error", err.Error())
		return nil
	}
	blob, err := r.poster.UploadBlob(ctx, png, "image/png")
	if err != nil {
		logging.Warn("blob upload failed, posting without image", "id", entry.ID, "error", err.Error())
		return nil
	}
	return &bsky.Image{Alt: entry.Title + " by " + entry.Authors, Blob: blob}
}

// pause sleeps a jittered interval between posts, honoring cancellation.
func (r *Runner) pause(ctx context.Context) error {
	d := r.cfg.MinDelay
	if span := r.cfg.MaxDelay - r.cfg.MinDelay; span > 0 {
		d += rand.N(span)
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
