// Package transport defines the boundary between the routing core and
// the wire layer: a per-endpoint RPC client, a factory that builds one,
// and the per-call request context.
package transport

import (
	"context"
	"time"

	"github.com/luminardb/luminar-go/model"
)

// Context carries per-call metadata for LuminarDB RPCs.
type Context struct {
	// Database is the target database. Falls back to the client's
	// configured default when empty.
	Database string
	// AuthToken identifies the caller.
	AuthToken string
	// Timeout overrides the configured default for this call. Zero means
	// use the default.
	Timeout time.Duration
}

// RouteRequest asks the server which endpoint serves each table.
type RouteRequest struct {
	Tables []string
}

// Route is one entry of a RouteResponse. Endpoint is nil when the
// server has no explicit route for the table.
type Route struct {
	Table    string
	Endpoint *model.Endpoint
}

// RouteResponse maps tables to the endpoints serving them.
type RouteResponse struct {
	Routes []Route
}

// WriteResponse carries per-row outcome counts for one write RPC.
type WriteResponse struct {
	Success uint32
	Failed  uint32
}

// Client executes single RPCs against one endpoint.
//
// Implementations return *dberrors.Error values: server failures carry
// the remote status code, transport failures do not.
type Client interface {
	SQLQuery(ctx context.Context, tctx *Context, req *model.SQLQueryRequest) (*model.SQLQueryResponse, error)
	Write(ctx context.Context, tctx *Context, req *model.WriteRequest) (*WriteResponse, error)
	Route(ctx context.Context, tctx *Context, req *RouteRequest) (*RouteResponse, error)
}

// Factory builds a Client for an endpoint address.
type Factory interface {
	Build(endpoint string) (Client, error)
}
