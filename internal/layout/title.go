package layout

import (
	"strings"

	"github.com/dgallion1/docoutline/internal/glyph"
)

const (
	// DefaultTitle is returned when no title can be derived.
	DefaultTitle = "Untitled Document"

	// DefaultTitleSizeTolerance is how far below the page's largest font
	// size a glyph may be and still count toward the title.
	DefaultTitleSizeTolerance = 1.0

	maxTitleGlyphs = 100
)

// ExtractTitle derives a title from the first page's dominant font run.
func ExtractTitle(glyphs []glyph.Glyph, tolerance float64) string {
	if len(glyphs) == 0 {
		return DefaultTitle
	}

	maxSize := glyphs[0].FontSize
	for _, g := range glyphs[1:] {
		if g.FontSize > maxSize {
			maxSize = g.FontSize
		}
	}

	var sb strings.Builder
	taken := 0
	for _, g := range glyphs {
		if taken == maxTitleGlyphs {
			break
		}
		if g.FontSize >= maxSize-tolerance {
			sb.WriteString(g.Text)
			taken++
		}
	}

	if title := NormalizeSpace(sb.String()); title != "" {
		return title
	}
	return DefaultTitle
}
