package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docoutline-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	m := &Markup{}
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		depth := docxHeadingLevel(para)
		if depth == 0 {
			continue
		}
		if text := docxParagraphText(para); text != "" {
			m.Headings = append(m.Headings, MarkupHeading{Depth: depth, Text: text})
		}
	}

	m.Title = docxTitle(doc, m.Headings, stem(filename))
	return &Document{Markup: m}, nil
}

// docxTitle prefers a paragraph styled "Title", then the first level-1
// heading, then the filename.
func docxTitle(doc *docx.Docx, headings []MarkupHeading, fallback string) string {
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok || para.Properties == nil || para.Properties.Style == nil {
			continue
		}
		if strings.EqualFold(para.Properties.Style.Val, "Title") {
			if t := docxParagraphText(para); t != "" {
				return t
			}
		}
	}
	return firstTopHeading(headings, fallback)
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	return styleDepth(para.Properties.Style.Val)
}

// styleDepth maps "Heading1" / "heading 1" style names to 1-6.
func styleDepth(style string) int {
	style = strings.ToLower(strings.ReplaceAll(style, " ", ""))
	n, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if !strings.HasPrefix(style, "heading") || err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}
