// Package luminar is the Go client for LuminarDB. It routes table
// operations to the server instances that own them, fans multi-table
// writes out across endpoints, and reports partial failures without
// losing any table's outcome.
package luminar

import (
	"context"
	"time"

	"github.com/luminardb/luminar-go/dberrors"
	"github.com/luminardb/luminar-go/model"
	"github.com/luminardb/luminar-go/transport"
)

// DbClient is the uniform client surface. Behavior is the same whether
// the underlying mode is direct (route based) or proxy (single endpoint).
type DbClient interface {
	// SQLQuery runs a SQL query. The request's first table determines the
	// target endpoint in direct mode.
	SQLQuery(ctx context.Context, tctx *transport.Context, req *model.SQLQueryRequest) (*model.SQLQueryResponse, error)

	// Write stores the request's points. In direct mode the request is
	// split per endpoint and dispatched concurrently; a partial failure
	// surfaces as a *MultiWriteError.
	Write(ctx context.Context, tctx *transport.Context, req *model.WriteRequest) (*model.WriteOk, error)
}

// resolveContext fills in the default database and rejects calls that
// end up with none. The input context is never mutated.
func resolveContext(tctx *transport.Context, defaultDatabase string) (*transport.Context, error) {
	resolved := &transport.Context{}
	if tctx != nil {
		*resolved = *tctx
	}
	if resolved.Database == "" {
		resolved.Database = defaultDatabase
	}
	if resolved.Database == "" {
		return nil, dberrors.Client("no database selected: set one on the request context or configure a default")
	}
	return resolved, nil
}

// callContext bounds one RPC with the per-call timeout override, or the
// configured default when no override is set.
func callContext(ctx context.Context, tctx *transport.Context, def time.Duration) (context.Context, context.CancelFunc) {
	timeout := def
	if tctx.Timeout > 0 {
		timeout = tctx.Timeout
	}
	return context.WithTimeout(ctx, timeout)
}
