package persona

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/dgallion1/docoutline/internal/embed"
	"golang.org/x/text/unicode/norm"
)

// Strategy names the scoring method a ranking used.
type Strategy string

const (
	StrategySemantic Strategy = "semantic"
	StrategyKeyword  Strategy = "keyword"
)

// Scorer turns texts into fixed-size vectors. *embed.Client implements it.
type Scorer interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

var errNoScorer = errors.New("no semantic scorer configured")

// Ranker scores sections against a reader context. Semantic scoring is used
// when a Scorer is configured and answers; otherwise the whole call falls
// back to keyword overlap.
type Ranker struct {
	scorer Scorer
	log    *slog.Logger
}

// NewRanker returns a Ranker. A nil scorer selects keyword scoring.
func NewRanker(scorer Scorer, log *slog.Logger) *Ranker {
	if log == nil {
		log = slog.Default()
	}
	return &Ranker{scorer: scorer, log: log}
}

// Rank returns a copy of sections with ImportanceRank set, sorted by
// descending rank. Equal ranks keep their input order. Only ImportanceRank
// differs from the input sections.
func (r *Ranker) Rank(ctx context.Context, sections []Section, pc Context) ([]Section, Strategy) {
	out := slices.Clone(sections)
	if out == nil {
		out = []Section{}
	}
	query := pc.String()

	strategy := StrategySemantic
	scores, err := r.semanticScores(ctx, out, query)
	if err != nil {
		strategy = StrategyKeyword
		if errors.Is(err, errNoScorer) {
			r.log.Debug("no semantic scorer, using keyword overlap", "sections", len(out))
		} else {
			rankingFallbacks.Inc()
			r.log.Warn("semantic ranking unavailable, using keyword overlap",
				"sections", len(out), "error", err)
		}
		scores = keywordScores(out, query)
	}
	rankings.WithLabelValues(string(strategy)).Inc()

	for i := range out {
		out[i].ImportanceRank = scores[i]
	}
	slices.SortStableFunc(out, func(a, b Section) int {
		return cmp.Compare(b.ImportanceRank, a.ImportanceRank)
	})
	return out, strategy
}

func (r *Ranker) semanticScores(ctx context.Context, sections []Section, query string) ([]float64, error) {
	if r.scorer == nil {
		return nil, errNoScorer
	}
	if len(sections) == 0 {
		return []float64{}, nil
	}

	texts := make([]string, 0, len(sections)+1)
	texts = append(texts, query)
	for _, s := range sections {
		texts = append(texts, s.SectionTitle)
	}

	vecs, err := r.scorer.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("scorer returned %d vectors for %d texts", len(vecs), len(texts))
	}
	dim := len(vecs[0])
	for i, v := range vecs {
		if dim == 0 || len(v) != dim {
			return nil, fmt.Errorf("vector %d has %d dims, want %d: %w", i, len(v), dim, embed.ErrDimensionMismatch)
		}
	}

	scores := make([]float64, len(sections))
	for i := range sections {
		scores[i] = embed.Cosine(vecs[0], vecs[i+1])
	}
	return scores, nil
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokens returns the distinct lowercase words of s. Compatibility
// characters such as ligatures are decomposed first.
func Tokens(s string) map[string]struct{} {
	s = strings.ToLower(norm.NFKC.String(s))
	words := wordRe.FindAllString(s, -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// KeywordScore is |tokens(query) ∩ tokens(title)| / max(|tokens(query)|, 1).
func KeywordScore(query, title string) float64 {
	return overlap(Tokens(query), Tokens(title))
}

func overlap(q, t map[string]struct{}) float64 {
	hits := 0
	for w := range t {
		if _, ok := q[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(max(len(q), 1))
}

func keywordScores(sections []Section, query string) []float64 {
	q := Tokens(query)
	scores := make([]float64, len(sections))
	for i, s := range sections {
		scores[i] = overlap(q, Tokens(s.SectionTitle))
	}
	return scores
}
