// Package routing tracks which endpoint serves each table.
package routing

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/luminardb/luminar-go/dberrors"
	"github.com/luminardb/luminar-go/internal/metrics"
	"github.com/luminardb/luminar-go/model"
	"github.com/luminardb/luminar-go/transport"
)

// Router maps table names to the endpoints currently believed to serve
// them. Cached routes go stale when the server moves a table; callers
// correct that by evicting and routing again.
type Router interface {
	// Route returns one endpoint per input table, in input order. A nil
	// entry means the table has no resolvable endpoint.
	Route(ctx context.Context, tctx *transport.Context, tables []string) ([]*model.Endpoint, error)

	// Evict drops the listed tables from the cache. Safe to call
	// concurrently with Route; never fails.
	Evict(tables []string)
}

// TableRouter resolves tables against a bootstrap endpoint and caches
// the results. Tables the server returns no explicit route for fall
// back to the bootstrap endpoint, which proxies internally.
type TableRouter struct {
	defaultEndpoint model.Endpoint
	factory         transport.Factory
	cache           *shardedCache
	metrics         *metrics.Metrics
	logger          *zap.Logger

	// mu guards the lazily built bootstrap client. Holding it across the
	// build makes racing first callers wait on one in-flight construction.
	mu     sync.Mutex
	client transport.Client
}

// NewTableRouter creates a router resolving against the given bootstrap
// endpoint.
func NewTableRouter(defaultEndpoint model.Endpoint, factory transport.Factory, m *metrics.Metrics, logger *zap.Logger) *TableRouter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &TableRouter{
		defaultEndpoint: defaultEndpoint,
		factory:         factory,
		cache:           newShardedCache(),
		metrics:         m,
		logger:          logger,
	}
}

// bootstrapClient returns the transport client for the bootstrap
// endpoint, building it at most once. A failed build is not cached, so
// the next caller retries.
func (r *TableRouter) bootstrapClient() (transport.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.client != nil {
		return r.client, nil
	}

	client, err := r.factory.Build(r.defaultEndpoint.String())
	if err != nil {
		return nil, err
	}

	r.client = client
	return client, nil
}

// Route resolves endpoints for the given tables, serving from the cache
// where possible and issuing at most one remote lookup for the misses.
// A remote failure aborts the whole batch and leaves the cache untouched.
func (r *TableRouter) Route(ctx context.Context, tctx *transport.Context, tables []string) ([]*model.Endpoint, error) {
	endpoints := make([]*model.Endpoint, len(tables))

	// Serve from cache first and collect misses. The same table may
	// appear more than once, so misses track every index it occupies.
	misses := make(map[string][]int)
	for i, table := range tables {
		if ep, exists := r.cache.Get(table); exists {
			ep := ep
			endpoints[i] = &ep
			r.metrics.RouteCacheHits.Inc()
			continue
		}
		r.metrics.RouteCacheMisses.Inc()
		misses[table] = append(misses[table], i)
	}

	if len(misses) == 0 {
		return endpoints, nil
	}

	client, err := r.bootstrapClient()
	if err != nil {
		return nil, err
	}

	missTables := make([]string, 0, len(misses))
	for table := range misses {
		missTables = append(missTables, table)
	}

	resp, err := client.Route(ctx, tctx, &transport.RouteRequest{Tables: missTables})
	if err != nil {
		return nil, err
	}
	r.metrics.RouteLookups.Inc()

	// Fill resolved misses and update the cache.
	for _, route := range resp.Routes {
		// The server may omit the endpoint; such tables are not cached and
		// fall back to the bootstrap endpoint below.
		if route.Endpoint == nil {
			continue
		}

		idxs, known := misses[route.Table]
		if !known {
			return nil, dberrors.Clientf("unknown table %q in route response", route.Table)
		}

		r.cache.Put(route.Table, *route.Endpoint)
		for _, i := range idxs {
			ep := *route.Endpoint
			endpoints[i] = &ep
		}
	}

	// Anything still unresolved is served by the bootstrap endpoint.
	for _, idxs := range misses {
		for _, i := range idxs {
			if endpoints[i] == nil {
				ep := r.defaultEndpoint
				endpoints[i] = &ep
			}
		}
	}

	r.logger.Debug("resolved routes",
		zap.Int("tables", len(tables)),
		zap.Int("misses", len(misses)))

	return endpoints, nil
}

// Evict removes the listed tables from the cache.
func (r *TableRouter) Evict(tables []string) {
	if len(tables) == 0 {
		return
	}

	for _, table := range tables {
		r.cache.Delete(table)
	}

	r.metrics.RouteEvictions.Add(float64(len(tables)))
	r.logger.Debug("evicted routes", zap.Strings("tables", tables))
}

// CachedRoutes returns the number of cached table routes.
func (r *TableRouter) CachedRoutes() int {
	return r.cache.Len()
}
