package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/glyph"
)

// Document is a decoded input. Layout formats (PDF, plain text) expose a
// glyph stream; markup formats carry their headings explicitly.
type Document struct {
	Glyphs glyph.Source // nil for markup formats
	Markup *Markup      // nil for layout formats
}

// Markup is the explicit structure of a markup document.
type Markup struct {
	Title    string
	Headings []MarkupHeading
}

// MarkupHeading is one heading element with its markup depth (1 for h1).
type MarkupHeading struct {
	Depth int
	Text  string
}

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// stem strips the extension from a filename.
func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
