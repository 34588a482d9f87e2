// Package report renders a structured feedback report onto the fixed
// one-page background template supplied at deployment time. Rendering is
// deterministic for identical input and assets; the only hard failure is a
// template or font that cannot be loaded.
package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"sync"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"bandcheck/internal/feedback"
	"bandcheck/pkg/platform/sentinel"
)

// Layout constants in points on an A4-proportioned page. The overlay scales
// them to the template's pixel width so one set of numbers serves any
// resolution of the same page.
const (
	pageWidthPt   = 595.0
	topOffsetFrac = 0.20
	marginPt      = 50.0
	boxHeightPt   = 70.0
	boxGutterPt   = 20.0
	boxPaddingPt  = 10.0

	headerFontPt  = 11.0
	commentFontPt = 9.0
	lineHeightPt  = 12.0

	// Comment text keeps only this many wrapped lines per criterion box;
	// the remainder is dropped silently.
	maxCommentLines = 3
	// The overall comment in the footer keeps this many wrapped lines.
	maxOverallLines = 5
)

// Renderer composites a feedback overlay onto page one of the background
// template. Assets load lazily on first render and are cached for the life
// of the process.
type Renderer struct {
	templatePath string
	fontPath     string
	logger       *slog.Logger

	mu       sync.Mutex
	template image.Image
	typeface *truetype.Font
}

type Option func(*Renderer)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer builds a renderer over the template image at templatePath.
// fontPath may be empty, in which case a built-in bitmap face is used.
func NewRenderer(templatePath, fontPath string, opts ...Option) *Renderer {
	r := &Renderer{
		templatePath: templatePath,
		fontPath:     fontPath,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws the report onto the template and returns the document as PNG
// bytes. A template or font that cannot be loaded wraps
// sentinel.ErrNoTemplate; that indicates a deployment defect, not bad input.
func (r *Renderer) Render(rep feedback.Report) ([]byte, error) {
	tmpl, typeface, err := r.loadAssets()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContextForImage(tmpl)
	w := float64(dc.Width())
	h := float64(dc.Height())
	scale := w / pageWidthPt

	margin := marginPt * scale
	boxWidth := w - 2*margin
	boxHeight := boxHeightPt * scale
	gutter := boxGutterPt * scale
	padding := boxPaddingPt * scale
	lineHeight := lineHeightPt * scale

	headerFace := r.face(typeface, headerFontPt*scale)
	commentFace := r.face(typeface, commentFontPt*scale)

	y := h * topOffsetFrac
	for _, c := range rep.Criteria {
		// Box frame
		dc.SetColor(color.NRGBA{R: 245, G: 245, B: 245, A: 255})
		dc.DrawRectangle(margin, y, boxWidth, boxHeight)
		dc.FillPreserve()
		dc.SetColor(color.NRGBA{R: 128, G: 128, B: 128, A: 255})
		dc.Stroke()

		// Header line: label left, band right
		dc.SetColor(color.Black)
		dc.SetFontFace(headerFace)
		dc.DrawString(string(c.Label), margin+padding, y+20*scale)
		bandText := "Band: " + feedback.FormatBand(c.Band)
		bandWidth, _ := dc.MeasureString(bandText)
		dc.DrawString(bandText, margin+boxWidth-padding-bandWidth, y+20*scale)

		// Comment, wrapped to the box's inner width
		dc.SetFontFace(commentFace)
		drawWrapped(dc, c.Comment, margin+padding, y+35*scale, boxWidth-2*padding, lineHeight, maxCommentLines)

		y += boxHeight + gutter
	}

	// Footer: overall score and comment at page content width
	dc.SetColor(color.Black)
	dc.SetFontFace(headerFace)
	if rep.HasOverallScore {
		dc.DrawString("Overall Band Score: "+feedback.FormatBand(rep.OverallScore), margin, y+10*scale)
	} else {
		dc.DrawString(feedback.NoBandScores, margin, y+10*scale)
	}
	dc.SetFontFace(commentFace)
	drawWrapped(dc, rep.OverallComment, margin, y+30*scale, boxWidth, lineHeight, maxOverallLines)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// drawWrapped wraps text to width and draws at most maxLines lines, dropping
// any remainder silently.
func drawWrapped(dc *gg.Context, text string, x, y, width, lineHeight float64, maxLines int) {
	lines := dc.WordWrap(text, width)
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	for i, line := range lines {
		dc.DrawString(line, x, y+float64(i)*lineHeight)
	}
}

func (r *Renderer) loadAssets() (image.Image, *truetype.Font, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.template == nil {
		f, err := os.Open(r.templatePath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: open template %s: %v", sentinel.ErrNoTemplate, r.templatePath, err)
		}
		img, _, err := image.Decode(f)
		_ = f.Close()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: decode template %s: %v", sentinel.ErrNoTemplate, r.templatePath, err)
		}
		r.template = img
		r.logger.Debug("report template loaded",
			"path", r.templatePath,
			"width", img.Bounds().Dx(),
			"height", img.Bounds().Dy(),
		)
	}

	if r.typeface == nil && r.fontPath != "" {
		raw, err := os.ReadFile(r.fontPath)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: read font %s: %v", sentinel.ErrNoTemplate, r.fontPath, err)
		}
		parsed, err := truetype.Parse(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: parse font %s: %v", sentinel.ErrNoTemplate, r.fontPath, err)
		}
		r.typeface = parsed
	}

	return r.template, r.typeface, nil
}

// face builds a fresh font.Face per render; truetype faces are not safe for
// concurrent use, so they are never shared across renders.
func (r *Renderer) face(typeface *truetype.Font, size float64) font.Face {
	if typeface == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(typeface, &truetype.Options{Size: size})
}
