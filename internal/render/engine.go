package render

import (
	"bytes"
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

//go:embed template.typ
var defaultTemplate string

const (
	markerTitle    = "{{TITLE}}"
	markerAuthors  = "{{AUTHORS}}"
	markerAbstract = "{{ABSTRACT}}"
)

// escaper neutralizes every character Typst markup treats as structural, so
// substituted text is always literal content. Replacer works in a single
// pass, so the inserted backslashes are never themselves re-escaped.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`[`, `\[`,
	`]`, `\]`,
	`{`, `\{`,
	`}`, `\}`,
	`#`, `\#`,
	`$`, `\$`,
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`@`, `\@`,
	`<`, `\<`,
	`>`, `\>`,
	`~`, `\~`,
	// A bare / pairs up into //, which starts a line comment in markup mode.
	`/`, `\/`,
)

func escapeMarkup(s string) string { return escaper.Replace(s) }

// populate substitutes the three markers in a single pass, so marker-shaped
// text inside the inputs never becomes a second substitution point.
func populate(template string, req Request) string {
	return strings.NewReplacer(
		markerTitle, escapeMarkup(req.Title),
		markerAuthors, escapeMarkup(req.Authors),
		markerAbstract, escapeMarkup(req.Abstract),
	).Replace(template)
}

func (r *Renderer) template() (string, error) {
	if r.opts.TemplatePath == "" {
		return defaultTemplate, nil
	}
	data, err := os.ReadFile(r.opts.TemplatePath)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", r.opts.TemplatePath, err)
	}
	return string(data), nil
}

// renderEngine runs the primary path: populate the template, write it to a
// content-named temp file, invoke the engine with a bounded timeout, and read
// back the raster output. Temp files are removed on every exit path.
func (r *Renderer) renderEngine(ctx context.Context, req Request) ([]byte, error) {
	template, err := r.template()
	if err != nil {
		return nil, err
	}
	doc := populate(template, req)

	sum := sha256.Sum256([]byte(doc))
	base := filepath.Join(os.TempDir(), "paperbot-"+hex.EncodeToString(sum[:8]))
	src := base + ".typ"
	out := base + ".png"

	if err := os.WriteFile(src, []byte(doc), 0o600); err != nil {
		return nil, fmt.Errorf("write engine source: %w", err)
	}
	defer func() {
		// Cleanup failures never affect the returned bytes.
		_ = os.Remove(src)
		_ = os.Remove(out)
	}()

	runCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	if err := r.runEngine(runCtx, r.opts.EngineBin, src, out, r.opts.PPI); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("engine output unreadable: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("engine produced empty output")
	}
	return data, nil
}

// runTypst invokes the engine binary as a subprocess. A non-zero exit or a
// context timeout is a primary-path failure, not a failure of the whole
// operation.
func runTypst(ctx context.Context, bin, src, out string, ppi int) error {
	cmd := exec.CommandContext(ctx, bin, "compile", "--format", "png", "--ppi", strconv.Itoa(ppi), src, out)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("engine timed out: %w", ctx.Err())
		}
		return fmt.Errorf("engine failed: %w: %s", err, firstLine(stderr.String()))
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
