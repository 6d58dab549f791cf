// Package render produces a summary image (title, authors, abstract) for a
// paper. It prefers an external typesetting engine and falls back to direct
// bitmap drawing when the engine is absent or fails.
package render

import (
	"context"
	"os/exec"
	"time"

	"github.com/apoorvalal/bsky-paperbot/internal/infra/logging"
)

// Request carries the three text blocks of one paper. Consumed once per call,
// nothing is cached across calls.
type Request struct {
	Title    string
	Authors  string
	Abstract string
}

// Options configures a Renderer. Zero values select the defaults.
type Options struct {
	EngineBin    string        // typesetting engine binary, default "typst"
	Timeout      time.Duration // engine subprocess timeout, default 10s
	TemplatePath string        // optional template override, default embedded
	Width        int           // fallback canvas width in pixels, default 1200
	PPI          int           // engine raster density, default 144
}

// Renderer renders papers to PNG bytes. Safe for sequential reuse; each
// Render call is independent.
type Renderer struct {
	opts Options

	// indirections for tests
	lookPath  func(string) (string, error)
	runEngine func(ctx context.Context, bin, src, out string, ppi int) error

	fonts fontSet
}

// New creates a Renderer with the given options.
func New(opts Options) *Renderer {
	if opts.EngineBin == "" {
		opts.EngineBin = "typst"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Width <= 0 {
		opts.Width = 1200
	}
	if opts.PPI <= 0 {
		opts.PPI = 144
	}
	return &Renderer{
		opts:      opts,
		lookPath:  exec.LookPath,
		runEngine: runTypst,
	}
}

// EngineAvailable reports whether the typesetting engine binary is present on
// this host. A presence check only, not a capability probe.
func (r *Renderer) EngineAvailable() bool {
	_, err := r.lookPath(r.opts.EngineBin)
	return err == nil
}

// Render returns PNG bytes for the request. Engine failures are logged and
// recovered via the bitmap fallback; an error is returned only when the
// fallback itself fails.
func (r *Renderer) Render(ctx context.Context, req Request) ([]byte, error) {
	if r.EngineAvailable() {
		png, err := r.renderEngine(ctx, req)
		if err == nil {
			return png, nil
		}
		logging.Warn("typesetting engine failed, using bitmap fallback", "error", err.Error())
	}
	return r.renderBitmap(req)
}
