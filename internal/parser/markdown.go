package parser

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	m := &Markup{}
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title := strings.Join(strings.Fields(inlineText(h, src)), " ")
		if title != "" {
			m.Headings = append(m.Headings, MarkupHeading{Depth: h.Level, Text: title})
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	m.Title = firstTopHeading(m.Headings, stem(filename))
	return &Document{Markup: m}, nil
}

// inlineText gets the text content of a goldmark inline subtree.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(inlineText(c, src))
		}
	}
	return sb.String()
}

// firstTopHeading returns the first depth-1 heading's text, or fallback.
func firstTopHeading(headings []MarkupHeading, fallback string) string {
	for _, h := range headings {
		if h.Depth == 1 {
			return h.Text
		}
	}
	return fallback
}
