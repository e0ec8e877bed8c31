// Package outline builds and persists per-document outlines: a title plus
// H1-H3 headings inferred from layout or read from markup.
package outline

import "github.com/dgallion1/docoutline/internal/layout"

// Outline is the structural summary of one document. When Success is false,
// Title and Outline are empty and Error describes the failure.
type Outline struct {
	Filename   string           `json:"filename,omitempty"`
	Title      string           `json:"title"`
	Outline    []layout.Heading `json:"outline"`
	TotalPages int              `json:"total_pages"`
	Success    bool             `json:"success"`
	Error      string           `json:"error,omitempty"`
}

// Failed returns the failure form of an outline.
func Failed(filename string, err error) Outline {
	return Outline{
		Filename: filename,
		Outline:  []layout.Heading{},
		Error:    err.Error(),
	}
}
