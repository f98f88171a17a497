// Package metrics holds the Prometheus instrumentation for the client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for one client instance.
type Metrics struct {
	// Routing metrics
	RouteCacheHits   prometheus.Counter
	RouteCacheMisses prometheus.Counter
	RouteLookups     prometheus.Counter
	RouteEvictions   prometheus.Counter

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Write fan-out metrics
	WritePartitions   prometheus.Counter
	PartitionFailures prometheus.Counter
}

// New creates and registers client metrics against the given registerer.
// A private registry is used when none is supplied, so multiple clients
// in one process never collide.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		RouteCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "luminar_client_route_cache_hits_total",
			Help: "Route lookups served from the local cache",
		}),
		RouteCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "luminar_client_route_cache_misses_total",
			Help: "Route lookups that missed the local cache",
		}),
		RouteLookups: factory.NewCounter(prometheus.CounterOpts{
			Name: "luminar_client_route_lookups_total",
			Help: "Remote route resolution calls issued",
		}),
		RouteEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "luminar_client_route_evictions_total",
			Help: "Route cache entries evicted",
		}),
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "luminar_client_requests_total",
			Help: "Requests issued, by operation and outcome",
		}, []string{"operation", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "luminar_client_request_duration_seconds",
			Help:    "Request latency, by operation",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		WritePartitions: factory.NewCounter(prometheus.CounterOpts{
			Name: "luminar_client_write_partitions_total",
			Help: "Write partitions dispatched to endpoints",
		}),
		PartitionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "luminar_client_write_partition_failures_total",
			Help: "Write partitions that failed",
		}),
	}
}
