package luminar

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/luminardb/luminar-go/config"
	"github.com/luminardb/luminar-go/dberrors"
	"github.com/luminardb/luminar-go/internal/metrics"
	"github.com/luminardb/luminar-go/internal/pool"
	"github.com/luminardb/luminar-go/internal/routing"
	"github.com/luminardb/luminar-go/model"
	"github.com/luminardb/luminar-go/transport"
)

// routedClient resolves each table to its owning endpoint, splits
// multi-table writes into per-endpoint partitions, dispatches them
// concurrently and merges the outcomes. Failures that look like stale
// routing state trigger cache eviction so the next call re-resolves.
type routedClient struct {
	router          routing.Router
	pool            *pool.ClientPool
	rpc             config.RPC
	defaultDatabase string
	logger          *zap.Logger
	metrics         *metrics.Metrics
}

func errEmptyWrite() error {
	return dberrors.Client("write request has no points")
}

func (c *routedClient) SQLQuery(ctx context.Context, tctx *transport.Context, req *model.SQLQueryRequest) (*model.SQLQueryResponse, error) {
	if len(req.Tables) == 0 {
		return nil, dberrors.Client("tables in query request can't be empty in direct mode")
	}
	tctx, err := resolveContext(tctx, c.defaultDatabase)
	if err != nil {
		return nil, err
	}

	endpoints, err := c.router.Route(ctx, tctx, req.Tables)
	if err != nil {
		return nil, err
	}
	// Queries target a single endpoint: the first table's. The remaining
	// tables are routing hints only.
	if endpoints[0] == nil {
		return nil, dberrors.Clientf("table %q doesn't have a corresponding endpoint", req.Tables[0])
	}

	client, err := c.pool.GetOrCreate(*endpoints[0])
	if err != nil {
		return nil, err
	}

	start := time.Now()
	callCtx, cancel := callContext(ctx, tctx, c.rpc.DefaultQueryTimeout)
	defer cancel()

	resp, err := client.SQLQuery(callCtx, tctx, req)
	c.observe("sql_query", start, err)
	if err != nil {
		// The whole hint set may be stale.
		c.router.Evict(req.Tables)
		return nil, err
	}
	return resp, nil
}

// partition is the subset of a write request destined for one endpoint.
type partition struct {
	endpoint model.Endpoint
	tables   []string
	req      *model.WriteRequest
}

// partitionOutcome is the result of executing one partition.
type partitionOutcome struct {
	tables []string
	ok     *transport.WriteResponse
	err    error
}

func (c *routedClient) Write(ctx context.Context, tctx *transport.Context, req *model.WriteRequest) (*model.WriteOk, error) {
	if req == nil || req.IsEmpty() {
		return nil, errEmptyWrite()
	}
	tctx, err := resolveContext(tctx, c.defaultDatabase)
	if err != nil {
		return nil, err
	}

	// Resolve every table in one batched call. A router failure aborts
	// the whole write before anything is dispatched.
	tables := req.Tables()
	endpoints, err := c.router.Route(ctx, tctx, tables)
	if err != nil {
		return nil, err
	}

	partitions, unroutable := partitionByEndpoint(req, tables, endpoints)

	start := time.Now()
	outcomes := c.dispatchPartitions(ctx, tctx, partitions)

	if len(unroutable) > 0 {
		outcomes = append(outcomes, partitionOutcome{
			tables: unroutable,
			err:    dberrors.Client("tables don't have corresponding endpoints"),
		})
	}

	// Evict routes behind failures that indicate the table has moved.
	var evicts []string
	for _, outcome := range outcomes {
		if outcome.err == nil {
			continue
		}
		c.metrics.PartitionFailures.Inc()
		if serverErr, ok := dberrors.AsServer(outcome.err); ok &&
			dberrors.ShouldRefreshRoute(serverErr.Code, serverErr.Message) {
			evicts = append(evicts, outcome.tables...)
		}
	}
	if len(evicts) > 0 {
		c.router.Evict(evicts)
	}

	result := mergeWriteResults(outcomes)
	c.observeWrite(start, result)
	if result.AllOk() {
		ok := result.Ok
		return &ok, nil
	}
	return nil, result
}

// partitionByEndpoint groups the request's tables by resolved endpoint.
// Tables without an endpoint land in the unroutable bucket; every input
// table ends up in exactly one place.
func partitionByEndpoint(req *model.WriteRequest, tables []string, endpoints []*model.Endpoint) (map[model.Endpoint]*partition, []string) {
	partitions := make(map[model.Endpoint]*partition)
	var unroutable []string

	for i, table := range tables {
		ep := endpoints[i]
		if ep == nil {
			unroutable = append(unroutable, table)
			continue
		}

		p, exists := partitions[*ep]
		if !exists {
			p = &partition{endpoint: *ep, req: model.NewWriteRequest()}
			partitions[*ep] = p
		}
		if err := p.req.Add(req.PointsFor(table)...); err != nil {
			unroutable = append(unroutable, table)
			continue
		}
		p.tables = append(p.tables, table)
	}

	return partitions, unroutable
}

// dispatchPartitions sends every partition concurrently and joins on all
// of them. One partition's failure or timeout never cancels a sibling.
func (c *routedClient) dispatchPartitions(ctx context.Context, tctx *transport.Context, partitions map[model.Endpoint]*partition) []partitionOutcome {
	outcomes := make([]partitionOutcome, 0, len(partitions)+1)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range partitions {
		p := p
		g.Go(func() error {
			outcome := partitionOutcome{tables: p.tables}

			client, err := c.pool.GetOrCreate(p.endpoint)
			if err != nil {
				outcome.err = err
			} else {
				callCtx, cancel := callContext(gctx, tctx, c.rpc.DefaultWriteTimeout)
				resp, err := client.Write(callCtx, tctx, p.req)
				cancel()
				if err != nil {
					c.logger.Warn("write partition failed",
						zap.String("endpoint", p.endpoint.String()),
						zap.Strings("tables", p.tables),
						zap.Error(err))
					outcome.err = err
				} else {
					outcome.ok = resp
				}
			}

			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
			// Collect the failure instead of failing the group.
			return nil
		})
	}
	_ = g.Wait()

	c.metrics.WritePartitions.Add(float64(len(partitions)))
	return outcomes
}

func (c *routedClient) observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RequestsTotal.WithLabelValues(operation, status).Inc()
	c.metrics.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (c *routedClient) observeWrite(start time.Time, result *MultiWriteError) {
	status := "ok"
	if !result.AllOk() {
		status = "error"
	}
	c.metrics.RequestsTotal.WithLabelValues("write", status).Inc()
	c.metrics.RequestDuration.WithLabelValues("write").Observe(time.Since(start).Seconds())
}
