// Package observability holds the Prometheus collectors for the service.
// Collectors are package-level and registered with the default registry so
// every component can record without plumbing a registry through.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	providerAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sopforge",
		Subsystem: "provider",
		Name:      "attempts_total",
		Help:      "Generation attempts per provider.",
	}, []string{"provider"})

	providerSuccesses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sopforge",
		Subsystem: "provider",
		Name:      "successes_total",
		Help:      "Successful generations per provider.",
	}, []string{"provider"})

	providerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sopforge",
		Subsystem: "provider",
		Name:      "failures_total",
		Help:      "Failed generations per provider.",
	}, []string{"provider"})

	providerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sopforge",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Latency of successful provider calls.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	}, []string{"provider"})

	fallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sopforge",
		Subsystem: "provider",
		Name:      "fallbacks_total",
		Help:      "Generations served from local fallback content.",
	})

	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sopforge",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Content cache hits per backend.",
	}, []string{"backend"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sopforge",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Content cache misses per backend.",
	}, []string{"backend"})

	batchUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sopforge",
		Subsystem: "batch",
		Name:      "units_total",
		Help:      "Batch pipeline unit outcomes.",
	}, []string{"outcome"})

	documentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sopforge",
		Subsystem: "generator",
		Name:      "document_duration_seconds",
		Help:      "Wall time to assemble one complete document.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)

func RecordProviderAttempt(provider string) {
	providerAttempts.WithLabelValues(provider).Inc()
}

func RecordProviderSuccess(provider string, d time.Duration) {
	providerSuccesses.WithLabelValues(provider).Inc()
	providerDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func RecordProviderFailure(provider string) {
	providerFailures.WithLabelValues(provider).Inc()
}

func RecordFallback() {
	fallbacks.Inc()
}

func RecordCacheHit(backend string) {
	cacheHits.WithLabelValues(backend).Inc()
}

func RecordCacheMiss(backend string) {
	cacheMisses.WithLabelValues(backend).Inc()
}

func RecordBatchUnit(outcome string) {
	batchUnits.WithLabelValues(outcome).Inc()
}

func RecordDocumentDuration(d time.Duration) {
	documentDuration.Observe(d.Seconds())
}
