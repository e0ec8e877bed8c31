package glyph

import "fmt"

// BBox is a glyph's bounding box in layout units. Y increases upward
// (PDF user space) for every Source.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Glyph is one rendered character unit on a page.
type Glyph struct {
	Text     string  `json:"text"`
	Page     int     `json:"page"` // 1-based
	BBox     BBox    `json:"bbox"`
	FontSize float64 `json:"size"`
	FontName string  `json:"fontname"`
}

// Source yields the positioned glyphs of a decoded document.
type Source interface {
	// NumPages returns the document's page count.
	NumPages() int

	// Page returns the glyphs of page n (1-based) in content-stream order.
	Page(n int) ([]Glyph, error)
}

// Pages is an in-memory Source. Pages[0] holds page 1.
type Pages [][]Glyph

func (p Pages) NumPages() int { return len(p) }

func (p Pages) Page(n int) ([]Glyph, error) {
	if n < 1 || n > len(p) {
		return nil, fmt.Errorf("page %d out of range (1-%d)", n, len(p))
	}
	return p[n-1], nil
}
