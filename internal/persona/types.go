// Package persona ranks outline sections against a reader's role and task
// and explains the top matches.
package persona

import "github.com/dgallion1/docoutline/internal/layout"

// DefaultDocumentName identifies sections whose document has no filename.
const DefaultDocumentName = "unknown.pdf"

// Context is the reader a ranking is computed for.
type Context struct {
	Role string
	Task string
}

// String returns the combined sentence both ranking strategies score
// against. Empty fields are kept as empty segments.
func (c Context) String() string {
	return c.Role + " needs to " + c.Task
}

// Document is one outlined document taking part in an analysis.
type Document struct {
	Filename string           `json:"filename"`
	Title    string           `json:"title,omitempty"`
	Outline  []layout.Heading `json:"outline"`
}

// Section is one heading addressed across a batch of documents.
type Section struct {
	Document       string       `json:"document"`
	Page           int          `json:"page"`
	SectionTitle   string       `json:"section_title"`
	Level          layout.Level `json:"level"`
	ImportanceRank float64      `json:"importance_rank"`
	SectionID      string       `json:"section_id"`
}

// SubsectionAnalysis explains why a top-ranked section matters to the
// reader.
type SubsectionAnalysis struct {
	Document         string  `json:"document"`
	SectionTitle     string  `json:"section_title"`
	RefinedText      string  `json:"refined_text"`
	PageNumber       int     `json:"page_number"`
	RelevanceScore   float64 `json:"relevance_score"`
	PersonaAlignment float64 `json:"persona_alignment"`
}
