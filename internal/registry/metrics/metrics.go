// Package metrics provides Prometheus metrics for registry lookups.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
)

// Metrics contains all registry metrics.
type Metrics struct {
	// Lookup pipeline
	LookupsTotal *prometheus.CounterVec // Lookups by outcome

	// Provider calls
	ProviderRequestDurationSeconds *prometheus.HistogramVec // Provider call latency by provider
	ProviderErrorsTotal            *prometheus.CounterVec   // Provider errors by provider and category
	BreakerOpen                    *prometheus.GaugeVec     // 1 while a provider's circuit is open

	// Cache operation metrics
	CacheHitsTotal             *prometheus.CounterVec   // Cache hits by backend
	CacheMissesTotal           *prometheus.CounterVec   // Cache misses by backend
	CacheLookupDurationSeconds *prometheus.HistogramVec // Cache lookup latency by backend
}

// New creates a new Metrics instance registered with reg. A nil reg uses the
// default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "innbot_registry_lookups_total",
			Help: "Total number of registry lookups by outcome",
		}, []string{"outcome"}),

		ProviderRequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "innbot_registry_provider_request_duration_seconds",
			Help:    "Duration of registry provider calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"provider"}),

		ProviderErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "innbot_registry_provider_errors_total",
			Help: "Total number of registry provider errors by category",
		}, []string{"provider", "category"}),

		BreakerOpen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "innbot_registry_breaker_open",
			Help: "Whether the provider circuit breaker is open (1) or closed (0)",
		}, []string{"provider"}),

		CacheHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "innbot_registry_cache_hits_total",
			Help: "Total number of registry cache hits by backend",
		}, []string{"backend"}),

		CacheMissesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "innbot_registry_cache_misses_total",
			Help: "Total number of registry cache misses by backend",
		}, []string{"backend"}),

		CacheLookupDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "innbot_registry_cache_lookup_duration_seconds",
			Help:    "Duration of cache lookup operations by backend",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05}, // Focus on sub-5ms for cache hits
		}, []string{"backend"}),
	}
}

// RecordLookup counts a finished lookup.
func (m *Metrics) RecordLookup(outcome string) {
	m.LookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveProviderCall records the latency of one provider attempt.
func (m *Metrics) ObserveProviderCall(provider string, durationSeconds float64) {
	m.ProviderRequestDurationSeconds.WithLabelValues(provider).Observe(durationSeconds)
}

// RecordProviderError counts a failed provider attempt.
func (m *Metrics) RecordProviderError(provider, category string) {
	m.ProviderErrorsTotal.WithLabelValues(provider, category).Inc()
}

// SetBreakerOpen tracks a provider's circuit state.
func (m *Metrics) SetBreakerOpen(provider string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerOpen.WithLabelValues(provider).Set(v)
}

// RecordCacheHit records a cache hit for the given backend.
func (m *Metrics) RecordCacheHit(backend string) {
	m.CacheHitsTotal.WithLabelValues(backend).Inc()
}

// RecordCacheMiss records a cache miss for the given backend.
func (m *Metrics) RecordCacheMiss(backend string) {
	m.CacheMissesTotal.WithLabelValues(backend).Inc()
}

// ObserveLookupDuration records the duration of a cache lookup operation.
func (m *Metrics) ObserveLookupDuration(backend string, durationSeconds float64) {
	m.CacheLookupDurationSeconds.WithLabelValues(backend).Observe(durationSeconds)
}

// CacheHitRate calculates the cache hit rate.
// This is a helper for testing; in production, use Prometheus queries.
func CacheHitRate(hits, misses float64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return hits / total
}
