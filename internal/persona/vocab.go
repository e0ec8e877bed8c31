package persona

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NeutralAlignment is the alignment reported when the persona matches no
// role in the vocabulary.
const NeutralAlignment = 0.5

// RoleKeywords lists the topics a reader role tends to care about.
type RoleKeywords struct {
	Role   string   `yaml:"role"`
	Topics []string `yaml:"topics"`
}

// Vocabulary maps role keywords to topic keywords. Roles are matched in
// order and every matching role contributes its topics.
type Vocabulary struct {
	Roles []RoleKeywords `yaml:"roles"`
}

// DefaultVocabulary returns the built-in role table.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{Roles: []RoleKeywords{
		{Role: "researcher", Topics: []string{"method", "analysis", "study", "research", "finding"}},
		{Role: "student", Topics: []string{"introduction", "basic", "concept", "example", "summary"}},
		{Role: "analyst", Topics: []string{"data", "trend", "analysis", "performance", "metric"}},
		{Role: "developer", Topics: []string{"implementation", "code", "algorithm", "system", "technical"}},
	}}
}

// LoadVocabulary reads a YAML role table:
//
//	roles:
//	  - role: lawyer
//	    topics: [clause, liability, precedent]
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary decodes and normalizes a YAML role table.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if len(v.Roles) == 0 {
		return nil, fmt.Errorf("parse vocabulary: no roles defined")
	}
	for i, r := range v.Roles {
		role := strings.ToLower(strings.TrimSpace(r.Role))
		if role == "" {
			return nil, fmt.Errorf("parse vocabulary: role %d has no name", i)
		}
		if len(r.Topics) == 0 {
			return nil, fmt.Errorf("parse vocabulary: role %q has no topics", role)
		}
		topics := make([]string, 0, len(r.Topics))
		for _, t := range r.Topics {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
				topics = append(topics, t)
			}
		}
		v.Roles[i] = RoleKeywords{Role: role, Topics: topics}
	}
	return &v, nil
}

// topicsFor pools the topics of every role whose keyword occurs in persona.
// Duplicates across roles are kept.
func (v *Vocabulary) topicsFor(persona string) []string {
	persona = strings.ToLower(persona)
	var topics []string
	for _, r := range v.Roles {
		if strings.Contains(persona, r.Role) {
			topics = append(topics, r.Topics...)
		}
	}
	return topics
}

// Alignment scores how well a section title fits a persona: the share of
// pooled topic keywords found in the title, capped at 1. Personas matching
// no role get NeutralAlignment.
func (v *Vocabulary) Alignment(title, persona string) float64 {
	topics := v.topicsFor(persona)
	if len(topics) == 0 {
		return NeutralAlignment
	}
	title = strings.ToLower(title)
	matches := 0
	for _, t := range topics {
		if strings.Contains(title, t) {
			matches++
		}
	}
	return min(float64(matches)/float64(len(topics)), 1.0)
}
