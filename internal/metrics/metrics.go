// Package metrics provides Prometheus metrics for the quoting engine.
package metrics

import (
	"time"

	"github.com/piwi3910/partquote/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the engine's collectors. A nil *Recorder records nothing,
// so callers never need to check whether metrics are enabled.
type Recorder struct {
	analysesTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
	featuresDetected *prometheus.CounterVec
	processSelected  *prometheus.CounterVec
	cacheEvents      *prometheus.CounterVec
	remoteCalls      *prometheus.CounterVec
	quotesTotal      *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		analysesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partquote_analyses_total",
				Help: "Total number of geometry analyses",
			},
			[]string{"source", "result"},
		),
		analysisDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "partquote_analysis_duration_seconds",
				Help:    "Time taken to analyze one part",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{"source"},
		),
		featuresDetected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partquote_features_detected_total",
				Help: "Total number of detected features",
			},
			[]string{"kind"},
		),
		processSelected: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partquote_process_recommendations_total",
				Help: "Total number of process recommendations",
			},
			[]string{"process"},
		),
		cacheEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partquote_pricing_cache_events_total",
				Help: "Pricing cache hits, misses and evictions",
			},
			[]string{"event"},
		),
		remoteCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partquote_remote_extraction_calls_total",
				Help: "Total number of calls to the remote extraction service",
			},
			[]string{"status"},
		),
		quotesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "partquote_quotes_total",
				Help: "Total number of priced quotes",
			},
			[]string{"process"},
		),
	}
}

// RecordAnalysis records one analysis outcome and its duration.
func (r *Recorder) RecordAnalysis(source model.Source, err error, duration time.Duration) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.analysesTotal.WithLabelValues(string(source), result).Inc()
	r.analysisDuration.WithLabelValues(string(source)).Observe(duration.Seconds())
}

// RecordGeometry records the features and recommendation of an analyzed part.
func (r *Recorder) RecordGeometry(g *model.GeometryData) {
	if r == nil || g == nil {
		return
	}
	for kind, locs := range g.FeatureMap {
		if len(locs) > 0 {
			r.featuresDetected.WithLabelValues(string(kind)).Add(float64(len(locs)))
		}
	}
	if g.RecommendedProcess != "" {
		r.processSelected.WithLabelValues(string(g.RecommendedProcess)).Inc()
	}
}

// RecordQuote counts one priced quote.
func (r *Recorder) RecordQuote(p model.Process) {
	if r == nil {
		return
	}
	r.quotesTotal.WithLabelValues(string(p)).Inc()
}

// RecordRemoteCall records a remote extraction attempt. Status is "ok",
// "timeout", "error" or an HTTP status class such as "5xx".
func (r *Recorder) RecordRemoteCall(status string) {
	if r == nil {
		return
	}
	r.remoteCalls.WithLabelValues(status).Inc()
}

// CacheHit implements pricing.CacheObserver.
func (r *Recorder) CacheHit() { r.cacheEvent("hit") }

// CacheMiss implements pricing.CacheObserver.
func (r *Recorder) CacheMiss() { r.cacheEvent("miss") }

// CacheEvict implements pricing.CacheObserver.
func (r *Recorder) CacheEvict() { r.cacheEvent("evict") }

func (r *Recorder) cacheEvent(event string) {
	if r == nil {
		return
	}
	r.cacheEvents.WithLabelValues(event).Inc()
}
