package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	searchLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tripseek_search_latency_ms",
		Help:    "Latency of hybrid search calls in milliseconds",
		Buckets: []float64{10, 25, 50, 75, 100, 150, 200, 300, 500, 800, 1200, 2000},
	}, []string{"mode"})

	searchResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tripseek_search_results",
		Help:    "Number of candidates returned by a hybrid search",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
	}, []string{"mode"})

	gradeOutcome = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripseek_grade_outcome_total",
		Help: "Grading outcomes by quality",
	}, []string{"quality"})

	correctionAction = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripseek_correction_action_total",
		Help: "Correction loop decisions (accept/refine/fallback)",
	}, []string{"action"})

	destinationFilter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripseek_destination_filter_total",
		Help: "Destination filter outcomes (kept/emptied)",
	}, []string{"outcome"})

	cacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tripseek_answer_cache_total",
		Help: "Answer cache lookups (hit/miss)",
	}, []string{"result"})
)

func ensureRegistered() {
	once.Do(func() {
		prometheus.MustRegister(searchLatency, searchResults, gradeOutcome, correctionAction, destinationFilter, cacheHits)
	})
}

// ObserveSearch records latency and result size for one hybrid search.
func ObserveSearch(mode string, start time.Time, results int) {
	ensureRegistered()
	searchLatency.WithLabelValues(mode).Observe(float64(time.Since(start).Milliseconds()))
	searchResults.WithLabelValues(mode).Observe(float64(results))
}

// IncGrade counts a grading outcome.
func IncGrade(quality string) {
	ensureRegistered()
	gradeOutcome.WithLabelValues(quality).Inc()
}

// IncAction counts a correction loop decision.
func IncAction(action string) {
	ensureRegistered()
	correctionAction.WithLabelValues(action).Inc()
}

// IncDestinationFilter records whether filtering kept candidates or
// emptied the pool (triggering the unfiltered fallback).
func IncDestinationFilter(outcome string) {
	ensureRegistered()
	destinationFilter.WithLabelValues(outcome).Inc()
}

// IncCache counts an answer-cache lookup result.
func IncCache(result string) {
	ensureRegistered()
	cacheHits.WithLabelValues(result).Inc()
}

// Collectors exposes all collectors for registration with a custom registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		searchLatency, searchResults, gradeOutcome, correctionAction, destinationFilter, cacheHits,
	}
}
