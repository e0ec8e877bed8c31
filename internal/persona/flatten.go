package persona

import (
	"strconv"

	"github.com/dgallion1/docoutline/internal/layout"
	"github.com/dgallion1/docoutline/internal/outline"
)

// FromOutline adapts a built outline for analysis. Failed outlines keep
// their filename but contribute no headings.
func FromOutline(o outline.Outline) Document {
	doc := Document{Filename: o.Filename, Title: o.Title}
	if o.Success {
		doc.Outline = o.Outline
	}
	return doc
}

// Flatten returns one Section per heading, in document order then heading
// order. Section IDs are "<document>_<index>" with a zero-based index per
// document.
func Flatten(docs []Document) []Section {
	n := 0
	for _, d := range docs {
		n += len(d.Outline)
	}
	out := make([]Section, 0, n)

	for _, d := range docs {
		name := documentName(d)
		for i, h := range d.Outline {
			out = append(out, Section{
				Document:     name,
				Page:         headingPage(h),
				SectionTitle: h.Text,
				Level:        headingLevel(h),
				SectionID:    name + "_" + strconv.Itoa(i),
			})
		}
	}
	return out
}

func documentName(d Document) string {
	if d.Filename == "" {
		return DefaultDocumentName
	}
	return d.Filename
}

func headingPage(h layout.Heading) int {
	if h.Page <= 0 {
		return 1
	}
	return h.Page
}

func headingLevel(h layout.Heading) layout.Level {
	if h.Level == "" {
		return layout.H1
	}
	return h.Level
}
