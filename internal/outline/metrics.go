package outline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusFailed  = "failed"
)

var outlinesBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "docoutline_outlines_built_total",
	Help: "Outlines built, by result.",
}, []string{"status"})
