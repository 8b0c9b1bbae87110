package auth

import "github.com/prometheus/client_golang/prometheus"

var (
	// roleCacheHits / roleCacheMisses track role cache effectiveness.
	roleCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_role_cache_hits_total",
		Help: "Total number of role cache hits.",
	})
	roleCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_role_cache_misses_total",
		Help: "Total number of role cache misses.",
	})

	// adminCacheHits / adminCacheMisses track the admin-status cache.
	adminCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_admin_cache_hits_total",
		Help: "Total number of admin-status cache hits.",
	})
	adminCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_admin_cache_misses_total",
		Help: "Total number of admin-status cache misses.",
	})

	// providerFailures counts admin-status provider errors and timeouts,
	// each of which degraded a lookup to "not admin".
	providerFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_provider_failures_total",
		Help: "Total number of admin-status provider failures.",
	})
)

func init() {
	prometheus.MustRegister(
		roleCacheHits,
		roleCacheMisses,
		adminCacheHits,
		adminCacheMisses,
		providerFailures,
	)
}
