package routing

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminardb/luminar-go/dberrors"
	"github.com/luminardb/luminar-go/model"
	"github.com/luminardb/luminar-go/transport"
)

// countingTransport serves route lookups from a mutable table and counts
// every remote call.
type countingTransport struct {
	mu         sync.Mutex
	routeTable map[string]model.Endpoint
	routeErr   error
	routeCalls int64
}

func (c *countingTransport) setRoute(table string, ep model.Endpoint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routeTable[table] = ep
}

func (c *countingTransport) calls() int64 {
	return atomic.LoadInt64(&c.routeCalls)
}

func (c *countingTransport) SQLQuery(ctx context.Context, tctx *transport.Context, req *model.SQLQueryRequest) (*model.SQLQueryResponse, error) {
	return nil, dberrors.Client("not implemented")
}

func (c *countingTransport) Write(ctx context.Context, tctx *transport.Context, req *model.WriteRequest) (*transport.WriteResponse, error) {
	return nil, dberrors.Client("not implemented")
}

func (c *countingTransport) Route(ctx context.Context, tctx *transport.Context, req *transport.RouteRequest) (*transport.RouteResponse, error) {
	atomic.AddInt64(&c.routeCalls, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.routeErr != nil {
		return nil, c.routeErr
	}

	resp := &transport.RouteResponse{}
	for _, table := range req.Tables {
		route := transport.Route{Table: table}
		if ep, ok := c.routeTable[table]; ok {
			ep := ep
			route.Endpoint = &ep
		}
		resp.Routes = append(resp.Routes, route)
	}
	return resp, nil
}

// countingFactory hands out a fixed client and counts builds.
type countingFactory struct {
	client   transport.Client
	buildErr error
	builds   int64
}

func (f *countingFactory) Build(endpoint string) (transport.Client, error) {
	atomic.AddInt64(&f.builds, 1)
	if f.buildErr != nil {
		return nil, f.buildErr
	}
	return f.client, nil
}

func newTestRouter(t *testing.T) (*TableRouter, *countingTransport, *countingFactory) {
	t.Helper()
	mock := &countingTransport{routeTable: make(map[string]model.Endpoint)}
	factory := &countingFactory{client: mock}
	router := NewTableRouter(model.NewEndpoint("192.168.0.5", 15), factory, nil, nil)
	return router, mock, factory
}

func tctx() *transport.Context {
	return &transport.Context{Database: "public"}
}

func TestRouteBasicFlow(t *testing.T) {
	router, mock, _ := newTestRouter(t)
	ctx := context.Background()

	ep1 := model.NewEndpoint("192.168.0.1", 11)
	ep2 := model.NewEndpoint("192.168.0.2", 12)
	ep3 := model.NewEndpoint("192.168.0.3", 13)
	ep4 := model.NewEndpoint("192.168.0.4", 14)
	defaultEndpoint := model.NewEndpoint("192.168.0.5", 15)

	mock.setRoute("metric1", ep1)
	mock.setRoute("metric2", ep2)

	tables := []string{"metric1", "metric2"}
	res, err := router.Route(ctx, tctx(), tables)
	require.NoError(t, err)
	assert.Equal(t, ep1, *res[0])
	assert.Equal(t, ep2, *res[1])
	assert.Equal(t, int64(1), mock.calls())

	// Change the remote table; the cache must keep serving the old routes
	// without another remote call.
	mock.setRoute("metric1", ep3)
	mock.setRoute("metric2", ep4)

	res, err = router.Route(ctx, tctx(), tables)
	require.NoError(t, err)
	assert.Equal(t, ep1, *res[0])
	assert.Equal(t, ep2, *res[1])
	assert.Equal(t, int64(1), mock.calls())

	// Eviction forces exactly one refresh, which sees the new routes.
	router.Evict(tables)
	res, err = router.Route(ctx, tctx(), tables)
	require.NoError(t, err)
	assert.Equal(t, ep3, *res[0])
	assert.Equal(t, ep4, *res[1])
	assert.Equal(t, int64(2), mock.calls())

	// Tables the server has no route for fall back to the default endpoint.
	res, err = router.Route(ctx, tctx(), []string{"metric3", "metric4"})
	require.NoError(t, err)
	assert.Equal(t, defaultEndpoint, *res[0])
	assert.Equal(t, defaultEndpoint, *res[1])
}

func TestRouteDefaultFallbackNotCached(t *testing.T) {
	router, mock, _ := newTestRouter(t)
	ctx := context.Background()

	res, err := router.Route(ctx, tctx(), []string{"unknown"})
	require.NoError(t, err)
	assert.Equal(t, model.NewEndpoint("192.168.0.5", 15), *res[0])
	assert.Equal(t, 0, router.CachedRoutes())

	// No cache entry means the next call asks again.
	_, err = router.Route(ctx, tctx(), []string{"unknown"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mock.calls())
}

func TestRouteRemoteFailureAborts(t *testing.T) {
	router, mock, _ := newTestRouter(t)
	mock.routeErr = dberrors.Transport("connection reset", nil)

	_, err := router.Route(context.Background(), tctx(), []string{"metric1"})
	require.Error(t, err)
	assert.Equal(t, 0, router.CachedRoutes())
}

func TestRouteDuplicateTables(t *testing.T) {
	router, mock, _ := newTestRouter(t)
	ep := model.NewEndpoint("192.168.0.1", 11)
	mock.setRoute("metric1", ep)

	res, err := router.Route(context.Background(), tctx(), []string{"metric1", "metric1"})
	require.NoError(t, err)
	assert.Equal(t, ep, *res[0])
	assert.Equal(t, ep, *res[1])
	assert.Equal(t, 1, router.CachedRoutes())
	assert.Equal(t, int64(1), mock.calls())
}

func TestRouteCacheSkipsRemoteWhenAllHit(t *testing.T) {
	router, mock, _ := newTestRouter(t)
	ep := model.NewEndpoint("192.168.0.1", 11)
	mock.setRoute("metric1", ep)

	_, err := router.Route(context.Background(), tctx(), []string{"metric1"})
	require.NoError(t, err)

	// Force remote failures; a full cache hit must not reach the remote.
	mock.mu.Lock()
	mock.routeErr = dberrors.Transport("down", nil)
	mock.mu.Unlock()

	res, err := router.Route(context.Background(), tctx(), []string{"metric1"})
	require.NoError(t, err)
	assert.Equal(t, ep, *res[0])
	assert.Equal(t, int64(1), mock.calls())
}

func TestRouteConcurrentResolutionConverges(t *testing.T) {
	router, mock, factory := newTestRouter(t)
	ep := model.NewEndpoint("192.168.0.1", 11)
	mock.setRoute("metric1", ep)

	const n = 16
	var wg sync.WaitGroup
	results := make([]*model.Endpoint, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := router.Route(context.Background(), tctx(), []string{"metric1"})
			errs[i] = err
			if err == nil {
				results[i] = res[0]
			}
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ep, *results[i])
	}

	assert.Equal(t, 1, router.CachedRoutes())
	assert.LessOrEqual(t, mock.calls(), int64(n))
	assert.GreaterOrEqual(t, mock.calls(), int64(1))
	// The bootstrap client is built exactly once even under racing first use.
	assert.Equal(t, int64(1), atomic.LoadInt64(&factory.builds))
}

func TestRouteBootstrapBuildFailureRetries(t *testing.T) {
	mock := &countingTransport{routeTable: make(map[string]model.Endpoint)}
	factory := &countingFactory{client: mock, buildErr: dberrors.Transport("dial failed", nil)}
	router := NewTableRouter(model.NewEndpoint("192.168.0.5", 15), factory, nil, nil)

	_, err := router.Route(context.Background(), tctx(), []string{"metric1"})
	require.Error(t, err)

	// A later call retries the build instead of caching the failure.
	factory.buildErr = nil
	_, err = router.Route(context.Background(), tctx(), []string{"metric1"})
	require.NoError(t, err)
}

func TestEvictUnknownTablesIsNoop(t *testing.T) {
	router, _, _ := newTestRouter(t)
	router.Evict([]string{"never-routed"})
	assert.Equal(t, 0, router.CachedRoutes())
}
