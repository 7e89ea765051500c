// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Cache metrics
	TokenCacheHits   prometheus.Counter
	TokenCacheMisses prometheus.Counter
	PriceCacheHits   prometheus.Counter
	PriceCacheMisses prometheus.Counter

	// Resolution metrics
	TokenResolutions *prometheus.CounterVec

	// Latency metrics
	APIRequestLatency *prometheus.HistogramVec
	RPCCallLatency    *prometheus.HistogramVec

	// Claim metrics
	ClaimAttempts *prometheus.CounterVec

	// Listing metrics
	ListingsBuilt      prometheus.Counter
	ListingsSuperseded prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_airdrop_client"
	}

	return &Metrics{
		TokenCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "cache_hits_total",
			Help:      "Total number of token metadata cache hits",
		}),
		TokenCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "cache_misses_total",
			Help:      "Total number of token metadata cache misses",
		}),
		PriceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "cache_hits_total",
			Help:      "Total number of price cache hits",
		}),
		PriceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricing",
			Name:      "cache_misses_total",
			Help:      "Total number of price cache misses",
		}),

		TokenResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "resolutions_total",
			Help:      "Total number of token metadata resolutions by outcome",
		}, []string{"outcome"}),

		APIRequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_latency_seconds",
			Help:      "Distribution API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		ClaimAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claim",
			Name:      "attempts_total",
			Help:      "Total number of claim attempts by status",
		}, []string{"status"}),

		ListingsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "airdrops",
			Name:      "listings_built_total",
			Help:      "Total number of claimable listings assembled",
		}),
		ListingsSuperseded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "airdrops",
			Name:      "listings_superseded_total",
			Help:      "Total number of listings discarded as stale",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTokenCache records a token metadata cache lookup.
func RecordTokenCache(hit bool) {
	if hit {
		DefaultMetrics.TokenCacheHits.Inc()
	} else {
		DefaultMetrics.TokenCacheMisses.Inc()
	}
}

// RecordPriceCache records a price cache lookup.
func RecordPriceCache(hit bool) {
	if hit {
		DefaultMetrics.PriceCacheHits.Inc()
	} else {
		DefaultMetrics.PriceCacheMisses.Inc()
	}
}

// RecordTokenResolution records a resolution outcome.
func RecordTokenResolution(outcome string) {
	DefaultMetrics.TokenResolutions.WithLabelValues(outcome).Inc()
}

// RecordAPILatency records distribution API request latency.
func RecordAPILatency(endpoint string, seconds float64) {
	DefaultMetrics.APIRequestLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordClaimAttempt records a settled claim attempt.
func RecordClaimAttempt(status string) {
	DefaultMetrics.ClaimAttempts.WithLabelValues(status).Inc()
}

// RecordListing records an assembled listing, or a discarded stale one.
func RecordListing(superseded bool) {
	if superseded {
		DefaultMetrics.ListingsSuperseded.Inc()
	} else {
		DefaultMetrics.ListingsBuilt.Inc()
	}
}
