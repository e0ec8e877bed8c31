package persona

import (
	"fmt"
	"strings"
)

// template renders refined text for sections whose title contains one of
// its keywords.
type template struct {
	keywords []string
	render   func(s Section, pc Context) string
}

// templates are tried in order; the first match wins.
var templates = []template{
	{[]string{"introduction"}, func(_ Section, pc Context) string {
		return fmt.Sprintf("Foundational concepts relevant to %s working on %s", pc.Role, pc.Task)
	}},
	{[]string{"method", "approach"}, func(_ Section, pc Context) string {
		return fmt.Sprintf("Methodology section crucial for %s to understand implementation strategies", pc.Role)
	}},
	{[]string{"result", "finding"}, func(_ Section, pc Context) string {
		return fmt.Sprintf("Key findings and outcomes directly applicable to %s", pc.Task)
	}},
	{[]string{"conclusion"}, func(_ Section, pc Context) string {
		return fmt.Sprintf("Summary and implications for %s in the context of %s", pc.Role, pc.Task)
	}},
}

func genericText(s Section, pc Context) string {
	return fmt.Sprintf("%s section providing specialized knowledge for %s", s.Level, pc.Role)
}

// RefinedText explains why s matters to the reader.
func RefinedText(s Section, pc Context) string {
	title := strings.ToLower(s.SectionTitle)
	for _, t := range templates {
		for _, kw := range t.keywords {
			if strings.Contains(title, kw) {
				return t.render(s, pc)
			}
		}
	}
	return genericText(s, pc)
}

// Synthesizer builds subsection analyses for top-ranked sections.
type Synthesizer struct {
	vocab *Vocabulary
}

// NewSynthesizer returns a Synthesizer scoring alignment with vocab, or
// with DefaultVocabulary when vocab is nil.
func NewSynthesizer(vocab *Vocabulary) *Synthesizer {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Synthesizer{vocab: vocab}
}

// Synthesize returns one analysis for each of the first limit ranked
// sections.
func (s *Synthesizer) Synthesize(ranked []Section, pc Context, limit int) []SubsectionAnalysis {
	n := min(max(limit, 0), len(ranked))
	out := make([]SubsectionAnalysis, 0, n)
	for _, sec := range ranked[:n] {
		out = append(out, SubsectionAnalysis{
			Document:         sec.Document,
			SectionTitle:     sec.SectionTitle,
			RefinedText:      RefinedText(sec, pc),
			PageNumber:       sec.Page,
			RelevanceScore:   sec.ImportanceRank,
			PersonaAlignment: s.vocab.Alignment(sec.SectionTitle, pc.Role),
		})
	}
	return out
}
