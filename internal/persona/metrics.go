package persona

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rankings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docoutline_persona_rankings_total",
		Help: "Ranking calls, by strategy used.",
	}, []string{"strategy"})

	rankingFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docoutline_persona_ranking_fallbacks_total",
		Help: "Ranking calls that fell back from semantic to keyword scoring.",
	})
)
