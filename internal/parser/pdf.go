package parser

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dgallion1/docoutline/internal/glyph"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser decodes PDF files into a positioned glyph stream.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf needs a ReaderAt+size.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	src, err := OpenPDF(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	return &Document{Glyphs: src}, nil
}

// OpenPDF opens a PDF as a glyph.Source. The decoder panics on some
// malformed inputs; those are returned as errors.
func OpenPDF(r io.ReaderAt, size int64) (src glyph.Source, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			src, err = nil, fmt.Errorf("open pdf: %v", rec)
		}
	}()

	reader, err := pdflib.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &pdfSource{reader: reader}, nil
}

type pdfSource struct {
	reader *pdflib.Reader
}

func (s *pdfSource) NumPages() int {
	return s.reader.NumPage()
}

func (s *pdfSource) Page(n int) (glyphs []glyph.Glyph, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			glyphs, err = nil, fmt.Errorf("decode page %d: %v", n, rec)
		}
	}()

	page := s.reader.Page(n)
	if page.V.IsNull() {
		return nil, nil
	}
	return pageGlyphs(page.Content().Text, n), nil
}

// pageGlyphs converts decoded text runs into glyphs. Word gaps rendered by
// positioning rather than a space character get a synthetic space glyph so
// downstream line text keeps its word boundaries.
func pageGlyphs(texts []pdflib.Text, page int) []glyph.Glyph {
	glyphs := make([]glyph.Glyph, 0, len(texts))
	for i, t := range texts {
		if t.S == "" {
			continue
		}
		if i > 0 {
			if sp, ok := gapSpace(texts[i-1], t, page); ok {
				glyphs = append(glyphs, sp)
			}
		}
		glyphs = append(glyphs, glyph.Glyph{
			Text:     t.S,
			Page:     page,
			BBox:     glyph.BBox{X0: t.X, Y0: t.Y, X1: t.X + t.W, Y1: t.Y + t.FontSize},
			FontSize: t.FontSize,
			FontName: t.Font,
		})
	}
	return glyphs
}

const minWordGap = 1.0

func gapSpace(prev, cur pdflib.Text, page int) (glyph.Glyph, bool) {
	if math.Abs(prev.Y-cur.Y) > 0.5 {
		return glyph.Glyph{}, false
	}
	if strings.TrimSpace(prev.S) == "" || strings.TrimSpace(cur.S) == "" {
		return glyph.Glyph{}, false
	}
	end := prev.X + prev.W
	gap := cur.X - end
	if gap <= math.Max(cur.FontSize*0.2, minWordGap) {
		return glyph.Glyph{}, false
	}
	return glyph.Glyph{
		Text:     " ",
		Page:     page,
		BBox:     glyph.BBox{X0: end, Y0: cur.Y, X1: cur.X, Y1: cur.Y + cur.FontSize},
		FontSize: cur.FontSize,
		FontName: cur.Font,
	}, true
}
