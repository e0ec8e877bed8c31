package layout

import (
	"math"
	"slices"
)

// Level is a heading's depth in the outline.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

var levelOrder = []Level{H1, H2, H3}

// LevelFromDepth maps a markup heading depth (1-6) onto H1-H3, clamping
// deeper headings to H3.
func LevelFromDepth(depth int) Level {
	switch {
	case depth <= 1:
		return H1
	case depth == 2:
		return H2
	default:
		return H3
	}
}

// Heading is a leveled outline entry.
type Heading struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// AssignLevels labels candidates H1-H3 by nearest reference font size.
//
// The up-to-three largest distinct sizes become the references, largest
// first. Each candidate takes the level of the reference closest to its own
// size; ties go to the larger reference.
func AssignLevels(cands []Candidate) []Heading {
	out := make([]Heading, 0, len(cands))
	if len(cands) == 0 {
		return out
	}

	refs := referenceSizes(cands)
	for _, c := range cands {
		out = append(out, Heading{
			Level: levelOrder[nearest(refs, c.FontSize)],
			Text:  c.Text,
			Page:  c.Page,
		})
	}
	return out
}

// referenceSizes returns up to len(levelOrder) distinct sizes, descending.
func referenceSizes(cands []Candidate) []float64 {
	sizes := make([]float64, 0, len(cands))
	for _, c := range cands {
		sizes = append(sizes, c.FontSize)
	}
	slices.Sort(sizes)
	sizes = slices.Compact(sizes)
	slices.Reverse(sizes)
	if len(sizes) > len(levelOrder) {
		sizes = sizes[:len(levelOrder)]
	}
	return sizes
}

// nearest returns the index of the reference closest to size. Only a
// strictly smaller distance displaces an earlier (larger) reference.
func nearest(refs []float64, size float64) int {
	best := 0
	bestDist := math.Abs(refs[0] - size)
	for i := 1; i < len(refs); i++ {
		if d := math.Abs(refs[i] - size); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
