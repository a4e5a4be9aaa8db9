// Package metrics holds the Prometheus collectors shared by the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adscript"

const (
	KindGenerate = "generate"
	KindRefine   = "refine"

	StatusSuccess = "success"
	StatusError   = "error"

	RefineSkipped = "skipped"
	RefineApplied = "applied"
	RefineFailed  = "failed"
)

var (
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "calls_total",
			Help:      "Backend calls issued per provider, call kind and status.",
		},
		[]string{"provider", "kind", "status"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "Backend call latency in seconds.",
			Buckets:   []float64{.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider", "kind"},
	)

	RefinementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refine",
			Name:      "decisions_total",
			Help:      "Refinement decisions per provider.",
		},
		[]string{"provider", "outcome"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "results_total",
			Help:      "Per-provider generation results.",
		},
		[]string{"provider", "status"},
	)

	ScriptLength = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "script_length_ratio",
			Help:      "Measured script length divided by the target length.",
			Buckets:   []float64{.25, .5, .75, .9, 1, 1.1, 1.25, 1.5, 2},
		},
		[]string{"provider"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "outbound_requests_total",
			Help:      "Outbound HTTP requests to provider APIs.",
		},
		[]string{"provider", "code"},
	)
)
