package layout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Classifier defaults.
const (
	DefaultMinFontSize = 12.0
	DefaultMinTextLen  = 3
	DefaultMaxTextLen  = 200
	DefaultMaxBoldLen  = 100
	defaultBoldMarker  = "bold"
)

// Reason records which rule accepted a heading candidate.
type Reason string

const (
	ReasonPattern  Reason = "pattern"
	ReasonFontSize Reason = "font_size"
	ReasonBold     Reason = "bold"
)

// Candidate is a line that passed the heading test.
type Candidate struct {
	Text      string
	Page      int
	FontSize  float64 // average over the line; the only signal used for leveling
	CharCount int
}

// headingPatterns are checked in order; any match accepts the line
// regardless of typography.
var headingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.?\s+[A-Z]`),               // "1 Intro", "2. Title"
	regexp.MustCompile(`^[A-Z][A-Z\s]{2,}$`),            // ALL CAPS
	regexp.MustCompile(`^[A-Z][a-z\s]+:?$`),             // Title case, optional colon
	regexp.MustCompile(`^\d+\.\d+`),                     // "1.2"
	regexp.MustCompile(`^(Chapter|Section|Part)\s+\d+`), // "Chapter 3"
}

// Classifier decides whether a line is a heading candidate.
type Classifier struct {
	MinFontSize float64
	MinTextLen  int
	MaxTextLen  int
	MaxBoldLen  int
}

// NewClassifier returns a Classifier with default length limits. A
// non-positive minFontSize selects DefaultMinFontSize.
func NewClassifier(minFontSize float64) *Classifier {
	if minFontSize <= 0 {
		minFontSize = DefaultMinFontSize
	}
	return &Classifier{
		MinFontSize: minFontSize,
		MinTextLen:  DefaultMinTextLen,
		MaxTextLen:  DefaultMaxTextLen,
		MaxBoldLen:  DefaultMaxBoldLen,
	}
}

// Classify returns the heading candidate for line, or ok=false when the
// line is rejected.
func (c *Classifier) Classify(line Line, page int) (cand Candidate, reason Reason, ok bool) {
	text := NormalizeSpace(line.Text())
	n := utf8.RuneCountInString(text)
	if n < c.MinTextLen || n > c.MaxTextLen {
		return Candidate{}, "", false
	}

	size := line.AvgFontSize()
	reason, ok = c.accept(text, n, size, line)
	if !ok {
		return Candidate{}, "", false
	}
	return Candidate{
		Text:      text,
		Page:      page,
		FontSize:  size,
		CharCount: n,
	}, reason, true
}

func (c *Classifier) accept(text string, n int, size float64, line Line) (Reason, bool) {
	for _, re := range headingPatterns {
		if re.MatchString(text) {
			return ReasonPattern, true
		}
	}
	if size > c.MinFontSize {
		return ReasonFontSize, true
	}
	if n < c.MaxBoldLen && hasBold(line) {
		return ReasonBold, true
	}
	return "", false
}

func hasBold(line Line) bool {
	for _, g := range line.Glyphs {
		if strings.Contains(strings.ToLower(g.FontName), defaultBoldMarker) {
			return true
		}
	}
	return false
}

// NormalizeSpace collapses whitespace runs to a single space and trims.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
