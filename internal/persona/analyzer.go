package persona

import (
	"context"
	"log/slog"
	"time"
)

// Default result sizes.
const (
	DefaultTopSections    = 15
	DefaultTopSubsections = 5
)

// Limits caps how many sections and analyses a response carries.
type Limits struct {
	TopSections    int
	TopSubsections int
}

// Role is the reader half of a request.
type Role struct {
	Role string `json:"role"`
}

// Job is the task half of a request.
type Job struct {
	Task string `json:"task"`
}

// Request asks for the sections of documents that matter most to a reader.
type Request struct {
	Persona     Role       `json:"persona"`
	JobToBeDone Job        `json:"job_to_be_done"`
	Documents   []Document `json:"documents"`
}

// Context returns the ranking context of the request.
func (r Request) Context() Context {
	return Context{Role: r.Persona.Role, Task: r.JobToBeDone.Task}
}

// Metadata describes an analysis run.
type Metadata struct {
	Documents             []string `json:"documents"`
	Persona               string   `json:"persona"`
	JobToBeDone           string   `json:"job_to_be_done"`
	ProcessingTimestamp   string   `json:"processing_timestamp"`
	TotalSectionsAnalyzed int      `json:"total_sections_analyzed"`
	RankingStrategy       Strategy `json:"ranking_strategy"`
}

// Response is the result of an analysis.
type Response struct {
	Metadata           Metadata             `json:"metadata"`
	ExtractedSections  []Section            `json:"extracted_sections"`
	SubsectionAnalysis []SubsectionAnalysis `json:"subsection_analysis"`
}

// Analyzer runs flatten, rank and synthesize over a batch of outlines.
type Analyzer struct {
	ranker *Ranker
	synth  *Synthesizer
	limits Limits
	log    *slog.Logger
	now    func() time.Time
}

func NewAnalyzer(ranker *Ranker, synth *Synthesizer, limits Limits, log *slog.Logger) *Analyzer {
	if ranker == nil {
		ranker = NewRanker(nil, log)
	}
	if synth == nil {
		synth = NewSynthesizer(nil)
	}
	if limits.TopSections <= 0 {
		limits.TopSections = DefaultTopSections
	}
	if limits.TopSubsections <= 0 {
		limits.TopSubsections = DefaultTopSubsections
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{ranker: ranker, synth: synth, limits: limits, log: log, now: time.Now}
}

// Analyze ranks every section of req's documents for its reader. Empty
// input yields empty lists, not an error.
func (a *Analyzer) Analyze(ctx context.Context, req Request) Response {
	pc := req.Context()
	sections := Flatten(req.Documents)
	ranked, strategy := a.ranker.Rank(ctx, sections, pc)

	names := make([]string, 0, len(req.Documents))
	for _, d := range req.Documents {
		names = append(names, documentName(d))
	}

	top := ranked[:min(a.limits.TopSections, len(ranked))]
	a.log.Info("persona analysis complete",
		"documents", len(req.Documents),
		"sections", len(sections),
		"strategy", strategy,
	)

	return Response{
		Metadata: Metadata{
			Documents:             names,
			Persona:               pc.Role,
			JobToBeDone:           pc.Task,
			ProcessingTimestamp:   a.now().UTC().Format(time.RFC3339),
			TotalSectionsAnalyzed: len(sections),
			RankingStrategy:       strategy,
		},
		ExtractedSections:  top,
		SubsectionAnalysis: a.synth.Synthesize(ranked, pc, a.limits.TopSubsections),
	}
}
