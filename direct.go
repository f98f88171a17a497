package luminar

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/luminardb/luminar-go/config"
	"github.com/luminardb/luminar-go/internal/metrics"
	"github.com/luminardb/luminar-go/model"
	"github.com/luminardb/luminar-go/transport"
)

// directClient talks to a single endpoint which proxies requests to the
// owning instances internally. No routing state is kept client side.
type directClient struct {
	endpoint        string
	factory         transport.Factory
	rpc             config.RPC
	defaultDatabase string
	logger          *zap.Logger
	metrics         *metrics.Metrics

	// mu guards the lazily built transport client.
	mu     sync.Mutex
	client transport.Client
}

func (c *directClient) transportClient() (transport.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	client, err := c.factory.Build(c.endpoint)
	if err != nil {
		return nil, err
	}

	c.client = client
	return client, nil
}

func (c *directClient) SQLQuery(ctx context.Context, tctx *transport.Context, req *model.SQLQueryRequest) (*model.SQLQueryResponse, error) {
	tctx, err := resolveContext(tctx, c.defaultDatabase)
	if err != nil {
		return nil, err
	}

	client, err := c.transportClient()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	callCtx, cancel := callContext(ctx, tctx, c.rpc.DefaultQueryTimeout)
	defer cancel()

	resp, err := client.SQLQuery(callCtx, tctx, req)
	c.observe("sql_query", start, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *directClient) Write(ctx context.Context, tctx *transport.Context, req *model.WriteRequest) (*model.WriteOk, error) {
	if req == nil || req.IsEmpty() {
		return nil, errEmptyWrite()
	}
	tctx, err := resolveContext(tctx, c.defaultDatabase)
	if err != nil {
		return nil, err
	}

	client, err := c.transportClient()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	callCtx, cancel := callContext(ctx, tctx, c.rpc.DefaultWriteTimeout)
	defer cancel()

	resp, err := client.Write(callCtx, tctx, req)
	c.observe("write", start, err)
	if err != nil {
		return nil, err
	}

	return &model.WriteOk{
		Tables:  req.Tables(),
		Success: resp.Success,
		Failed:  resp.Failed,
	}, nil
}

func (c *directClient) observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.RequestsTotal.WithLabelValues(operation, status).Inc()
	c.metrics.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
