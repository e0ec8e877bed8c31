package outline

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/docoutline/internal/glyph"
	"github.com/dgallion1/docoutline/internal/layout"
	"github.com/dgallion1/docoutline/internal/parser"
)

// Options tunes the layout heuristics. Negative tolerances and a
// non-positive HeadingMinFontSize take the layout defaults; a zero tolerance
// is honored and requires exact baseline or font-size matches.
type Options struct {
	LineTolerance      float64
	TitleSizeTolerance float64
	HeadingMinFontSize float64
}

// DefaultOptions returns the layout package defaults.
func DefaultOptions() Options {
	return Options{
		LineTolerance:      layout.DefaultLineTolerance,
		TitleSizeTolerance: layout.DefaultTitleSizeTolerance,
		HeadingMinFontSize: layout.DefaultMinFontSize,
	}
}

// Builder turns documents into outlines. It is the failure boundary of the
// pipeline: every Build* method returns an Outline, never an error.
type Builder struct {
	opts       Options
	classifier *layout.Classifier
	log        *slog.Logger
}

func NewBuilder(opts Options, log *slog.Logger) *Builder {
	def := DefaultOptions()
	if opts.LineTolerance < 0 {
		opts.LineTolerance = def.LineTolerance
	}
	if opts.TitleSizeTolerance < 0 {
		opts.TitleSizeTolerance = def.TitleSizeTolerance
	}
	if opts.HeadingMinFontSize <= 0 {
		opts.HeadingMinFontSize = def.HeadingMinFontSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		opts:       opts,
		classifier: layout.NewClassifier(opts.HeadingMinFontSize),
		log:        log,
	}
}

// BuildFile outlines the document at path.
func (b *Builder) BuildFile(path string) Outline {
	name := filepath.Base(path)
	f, err := os.Open(path)
	if err != nil {
		return b.fail(name, err)
	}
	defer f.Close()
	return b.Build(f, name)
}

// BuildBytes outlines an in-memory document.
func (b *Builder) BuildBytes(data []byte, filename string) Outline {
	return b.Build(bytes.NewReader(data), filename)
}

// Build decodes r according to filename's extension and outlines it.
func (b *Builder) Build(r io.Reader, filename string) (out Outline) {
	defer func() {
		if rec := recover(); rec != nil {
			out = b.fail(filename, fmt.Errorf("decode %s: %v", filename, rec))
		}
	}()

	p, err := parser.ForFile(filename)
	if err != nil {
		return b.fail(filename, err)
	}
	doc, err := p.Parse(r, filename)
	if err != nil {
		return b.fail(filename, err)
	}

	if doc.Markup != nil {
		out = fromMarkup(doc.Markup)
		outlinesBuilt.WithLabelValues(statusSuccess).Inc()
	} else {
		out = b.BuildSource(doc.Glyphs)
	}
	out.Filename = filename
	return out
}

// BuildSource outlines a glyph stream. The result is a pure function of the
// source's glyphs: rebuilding the same stream yields an identical Outline.
func (b *Builder) BuildSource(src glyph.Source) (out Outline) {
	defer func() {
		if rec := recover(); rec != nil {
			out = b.fail("", fmt.Errorf("decode: %v", rec))
		}
	}()

	if src == nil {
		return b.fail("", fmt.Errorf("no glyph source"))
	}

	n := src.NumPages()
	if n == 0 {
		outlinesBuilt.WithLabelValues(statusSuccess).Inc()
		return Outline{Outline: []layout.Heading{}, Success: true}
	}

	title := layout.DefaultTitle
	var cands []layout.Candidate
	for page := 1; page <= n; page++ {
		glyphs, err := src.Page(page)
		if err != nil {
			b.log.Warn("skipping unreadable page", "page", page, "error", err)
			continue
		}
		if page == 1 {
			title = layout.ExtractTitle(glyphs, b.opts.TitleSizeTolerance)
		}
		for _, line := range layout.GroupLines(glyphs, b.opts.LineTolerance) {
			cand, reason, ok := b.classifier.Classify(line, page)
			if !ok {
				continue
			}
			b.log.Debug("heading candidate", "page", page, "text", cand.Text, "size", cand.FontSize, "reason", reason)
			cands = append(cands, cand)
		}
	}

	outlinesBuilt.WithLabelValues(statusSuccess).Inc()
	return Outline{
		Title:      title,
		Outline:    layout.AssignLevels(cands),
		TotalPages: n,
		Success:    true,
	}
}

// fromMarkup levels explicit markup headings. Markup has no pagination, so
// every heading sits on page 1.
func fromMarkup(m *parser.Markup) Outline {
	headings := make([]layout.Heading, 0, len(m.Headings))
	for _, h := range m.Headings {
		headings = append(headings, layout.Heading{
			Level: layout.LevelFromDepth(h.Depth),
			Text:  h.Text,
			Page:  1,
		})
	}
	title := m.Title
	if title == "" {
		title = layout.DefaultTitle
	}
	return Outline{
		Title:      title,
		Outline:    headings,
		TotalPages: 1,
		Success:    true,
	}
}

func (b *Builder) fail(filename string, err error) Outline {
	b.log.Error("outline failed", "filename", filename, "error", err)
	outlinesBuilt.WithLabelValues(statusFailed).Inc()
	return Failed(filename, err)
}
