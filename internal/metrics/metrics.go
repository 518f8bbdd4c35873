// Package metrics provides Prometheus metrics for the lifecycle engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	SavesTotal           *prometheus.CounterVec
	VersionsAppended     *prometheus.CounterVec
	GenerationsTotal     *prometheus.CounterVec
	GenerationDuration   prometheus.Histogram
	AutosaveTicksTotal   prometheus.Counter
	AutosaveSkippedTotal prometheus.Counter
	AutosaveErrorsTotal  prometheus.Counter
	RankingRunsTotal     prometheus.Counter
	SuggestionsCreated   prometheus.Counter
}

// New creates and registers all engine metrics with promauto's default
// registerer.
func New() *Metrics {
	return &Metrics{
		SavesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proposalforge_section_saves_total",
				Help: "Section saves, by origin (manual or autosave)",
			},
			[]string{"origin"},
		),
		VersionsAppended: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proposalforge_versions_appended_total",
				Help: "Ledger appends, by change type",
			},
			[]string{"change_type"},
		),
		GenerationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proposalforge_generations_total",
				Help: "Generation requests, by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		GenerationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "proposalforge_generation_duration_seconds",
				Help:    "Wall time of oracle generation calls",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
			},
		),
		AutosaveTicksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "proposalforge_autosave_ticks_total",
				Help: "Completed auto-save reconciler ticks",
			},
		),
		AutosaveSkippedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "proposalforge_autosave_skipped_total",
				Help: "Buffered entries skipped because content was unchanged",
			},
		),
		AutosaveErrorsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "proposalforge_autosave_errors_total",
				Help: "Per-key persist failures during reconciliation",
			},
		),
		RankingRunsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "proposalforge_ranking_runs_total",
				Help: "Reuse ranking runs",
			},
		),
		SuggestionsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "proposalforge_suggestions_created_total",
				Help: "Reuse suggestions persisted",
			},
		),
	}
}
