// Package layout infers document structure from positioned glyphs: it groups
// glyphs into lines, picks heading candidates, extracts the title and assigns
// H1-H3 levels by font size.
package layout

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/dgallion1/docoutline/internal/glyph"
)

// DefaultLineTolerance is the maximum vertical distance, in layout units,
// between a glyph and the current line for the glyph to join it.
const DefaultLineTolerance = 2.0

// Line is a run of co-linear glyphs ordered left to right.
type Line struct {
	Glyphs []glyph.Glyph
}

// Text returns the raw concatenation of the line's glyph text.
func (l Line) Text() string {
	var sb strings.Builder
	for _, g := range l.Glyphs {
		sb.WriteString(g.Text)
	}
	return sb.String()
}

// AvgFontSize returns the mean font size over the line's glyphs.
func (l Line) AvgFontSize() float64 {
	if len(l.Glyphs) == 0 {
		return 0
	}
	var sum float64
	for _, g := range l.Glyphs {
		sum += g.FontSize
	}
	return sum / float64(len(l.Glyphs))
}

// GroupLines clusters one page's glyphs into lines ordered top to bottom.
//
// Glyphs are swept in (descending Y0, ascending X0) order. A glyph joins the
// current line when its Y0 is within tolerance of the last joined glyph,
// otherwise it opens a new line. Rotated or irregular baselines can mis-group.
func GroupLines(glyphs []glyph.Glyph, tolerance float64) []Line {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b glyph.Glyph) int {
		if c := cmp.Compare(b.BBox.Y0, a.BBox.Y0); c != 0 {
			return c
		}
		return cmp.Compare(a.BBox.X0, b.BBox.X0)
	})

	var lines []Line
	current := []glyph.Glyph{sorted[0]}
	currentY := sorted[0].BBox.Y0

	for _, g := range sorted[1:] {
		if math.Abs(g.BBox.Y0-currentY) <= tolerance {
			current = append(current, g)
		} else {
			lines = append(lines, newLine(current))
			current = []glyph.Glyph{g}
		}
		currentY = g.BBox.Y0
	}
	lines = append(lines, newLine(current))

	return lines
}

// newLine fixes left-to-right order; glyphs joined within tolerance may
// arrive with slightly different baselines and therefore out of X order.
func newLine(glyphs []glyph.Glyph) Line {
	slices.SortStableFunc(glyphs, func(a, b glyph.Glyph) int {
		return cmp.Compare(a.BBox.X0, b.BBox.X0)
	})
	return Line{Glyphs: glyphs}
}
