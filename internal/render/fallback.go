package render

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Layout constants for the fallback canvas, in pixels.
const (
	fallbackMargin   = 60.0
	titleSize        = 34.0
	authorsSize      = 22.0
	headerSize       = 24.0
	bodySize         = 19.0
	lineSpacing      = 1.45 // line height as a multiple of font size
	blockGap         = 26.0
	minCanvasHeight  = 200.0
	abstractHeading  = "Abstract"
	fallbackFontName = "paperbot"
)

type fontSet struct {
	once   sync.Once
	family *canvas.FontFamily
	err    error
}

func (f *fontSet) load() (*canvas.FontFamily, error) {
	f.once.Do(func() {
		family := canvas.NewFontFamily(fallbackFontName)
		for _, font := range []struct {
			data  []byte
			style canvas.FontStyle
		}{
			{goregular.TTF, canvas.FontRegular},
			{gobold.TTF, canvas.FontBold},
			{goitalic.TTF, canvas.FontItalic},
		} {
			if err := family.LoadFont(font.data, 0, font.style); err != nil {
				f.err = fmt.Errorf("load embedded font: %w", err)
				return
			}
		}
		f.family = family
	})
	return f.family, f.err
}

// wrappedLine is one laid-out line of a text block.
type wrappedLine struct {
	words []string
	width float64 // measured width of words joined by single spaces
	last  bool    // last line of its paragraph, never justified
}

// wrapWords greedily packs words onto lines no wider than limit. A word wider
// than the limit gets a line of its own rather than being broken.
func wrapWords(text string, face *canvas.FontFace, limit float64) []wrappedLine {
	var lines []wrappedLine
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}
		spaceW := face.TextWidth(" ")
		var cur []string
		curW := 0.0
		flush := func(last bool) {
			if len(cur) == 0 {
				return
			}
			lines = append(lines, wrappedLine{words: cur, width: curW, last: last})
			cur, curW = nil, 0
		}
		for _, w := range words {
			ww := face.TextWidth(w)
			next := curW + ww
			if len(cur) > 0 {
				next += spaceW
			}
			if len(cur) > 0 && next > limit {
				flush(false)
				next = ww
			}
			cur = append(cur, w)
			curW = next
		}
		flush(true)
	}
	return lines
}

type textBlock struct {
	face    *canvas.FontFace
	lines   []wrappedLine
	size    float64
	justify bool
}

func (b textBlock) height() float64 {
	return float64(len(b.lines)) * b.size * lineSpacing
}

// renderBitmap draws the three text blocks directly onto a canvas and encodes
// it as PNG. This path depends on no external process and is the terminal
// fallback; its errors surface to the caller.
func (r *Renderer) renderBitmap(req Request) ([]byte, error) {
	family, err := r.fonts.load()
	if err != nil {
		return nil, err
	}

	width := float64(r.opts.Width)
	content := width - 2*fallbackMargin

	titleFace := family.Face(titleSize, canvas.Black, canvas.FontBold, canvas.FontNormal)
	authorsFace := family.Face(authorsSize, canvas.Black, canvas.FontItalic, canvas.FontNormal)
	headerFace := family.Face(headerSize, canvas.Black, canvas.FontBold, canvas.FontNormal)
	bodyFace := family.Face(bodySize, canvas.Black, canvas.FontRegular, canvas.FontNormal)

	blocks := []textBlock{
		{face: titleFace, lines: wrapWords(req.Title, titleFace, content), size: titleSize},
		{face: authorsFace, lines: wrapWords(req.Authors, authorsFace, content), size: authorsSize},
		{face: headerFace, lines: wrapWords(abstractHeading, headerFace, content), size: headerSize},
		{face: bodyFace, lines: wrapWords(req.Abstract, bodyFace, content), size: bodySize, justify: true},
	}

	height := 2 * fallbackMargin
	for _, b := range blocks {
		height += b.height() + blockGap
	}
	if height < minCanvasHeight {
		height = minCanvasHeight
	}

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // top-left origin

	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(width, height))

	y := fallbackMargin
	for _, b := range blocks {
		y = drawBlock(ctx, b, fallbackMargin, y, content)
		y += blockGap
	}

	img := rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBlock draws a block's lines starting at top y and returns the y below
// the block. Justified lines spread the leftover width across inter-word
// gaps; the last line of each paragraph stays ragged.
func drawBlock(ctx *canvas.Context, b textBlock, x, y, contentWidth float64) float64 {
	metrics := b.face.Metrics()
	lineHeight := b.size * lineSpacing
	for _, line := range b.lines {
		baseline := y + metrics.Ascent
		if b.justify && !line.last && len(line.words) > 1 {
			spaceW := b.face.TextWidth(" ")
			extra := (contentWidth - line.width) / float64(len(line.words)-1)
			if extra < 0 {
				extra = 0
			}
			wx := x
			for _, word := range line.words {
				ctx.DrawText(wx, baseline, canvas.NewTextLine(b.face, word, canvas.Left))
				wx += b.face.TextWidth(word) + spaceW + extra
			}
		} else {
			text := strings.Join(line.words, " ")
			ctx.DrawText(x, baseline, canvas.NewTextLine(b.face, text, canvas.Left))
		}
		y += lineHeight
	}
	return y
}
