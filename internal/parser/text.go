package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docoutline/internal/glyph"
)

// Plain text carries no typography; lines are laid out at body size so only
// the structural heading rules can fire.
const (
	textFontSize   = 10.0
	textFontName   = "PlainText"
	textLineHeight = 12.0
	textPageTop    = 800.0
	textCharWidth  = textFontSize * 0.5
)

// TextParser handles plain text files. Form feeds separate pages.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var pages glyph.Pages
	var current []glyph.Glyph
	row := 0

	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\f")
		for i, part := range parts {
			if i > 0 {
				pages = append(pages, current)
				current = nil
				row = 0
			}
			if strings.TrimSpace(part) == "" {
				continue
			}
			current = append(current, layoutTextLine(part, len(pages)+1, row)...)
			row++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	// A trailing form feed closes the last page rather than opening a new one.
	if len(current) > 0 {
		pages = append(pages, current)
	}

	return &Document{Glyphs: pages}, nil
}

func layoutTextLine(line string, page, row int) []glyph.Glyph {
	y := textPageTop - float64(row)*textLineHeight
	var out []glyph.Glyph
	x := 0.0
	for _, r := range line {
		out = append(out, glyph.Glyph{
			Text:     string(r),
			Page:     page,
			BBox:     glyph.BBox{X0: x, Y0: y, X1: x + textCharWidth, Y1: y + textFontSize},
			FontSize: textFontSize,
			FontName: textFontName,
		})
		x += textCharWidth
	}
	return out
}
