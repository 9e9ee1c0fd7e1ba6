// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "matchfeed"

var (
	URLCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "url_cache",
		Name:      "hits_total",
		Help:      "Signed URL lookups served from the cache.",
	})

	URLCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "url_cache",
		Name:      "misses_total",
		Help:      "Signed URL lookups that required an upstream signing call.",
	})

	URLSignFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "url_cache",
		Name:      "sign_failures_total",
		Help:      "Upstream signing calls that returned an error.",
	})

	PhotoFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "photo_fallbacks_total",
		Help:      "Photos disclosed with a stored URL after a signing failure.",
	})

	FeedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "requests_total",
		Help:      "Feed requests by outcome.",
	}, []string{"outcome"})

	FeedLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "duration_seconds",
		Help:      "Feed generation latency.",
		Buckets:   prometheus.DefBuckets,
	})
)
