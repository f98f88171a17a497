package luminar

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/luminardb/luminar-go/config"
	"github.com/luminardb/luminar-go/dberrors"
	"github.com/luminardb/luminar-go/internal/metrics"
	"github.com/luminardb/luminar-go/internal/pool"
	"github.com/luminardb/luminar-go/internal/routing"
	"github.com/luminardb/luminar-go/model"
	"github.com/luminardb/luminar-go/transport"
)

// Mode selects how requests reach the cluster.
type Mode int

const (
	// Direct sends each request straight to the instance owning its
	// tables, using routes fetched from the bootstrap endpoint.
	Direct Mode = iota
	// Proxy sends every request to the configured endpoint, which
	// forwards internally.
	Proxy
)

// ParseMode converts a configuration mode string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case config.ModeDirect:
		return Direct, nil
	case config.ModeProxy:
		return Proxy, nil
	default:
		return Direct, dberrors.Clientf("unknown mode %q", s)
	}
}

// Builder assembles a DbClient.
type Builder struct {
	endpoint        string
	mode            Mode
	defaultDatabase string
	rpc             config.RPC
	factory         transport.Factory
	logger          *zap.Logger
	registerer      prometheus.Registerer
}

// NewBuilder starts a builder for the given bootstrap endpoint and mode.
func NewBuilder(endpoint string, mode Mode) *Builder {
	return &Builder{
		endpoint: endpoint,
		mode:     mode,
		rpc:      config.DefaultRPC(),
	}
}

// FromConfig starts a builder from a loaded configuration.
func FromConfig(cfg *config.Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, dberrors.Clientf("invalid config: %v", err)
	}
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	b := NewBuilder(cfg.Endpoint, mode)
	b.defaultDatabase = cfg.DefaultDatabase
	b.rpc = cfg.RPC
	return b, nil
}

// DefaultDatabase sets the database used when a request context names none.
func (b *Builder) DefaultDatabase(database string) *Builder {
	b.defaultDatabase = database
	return b
}

// RPCConfig overrides the gRPC channel settings.
func (b *Builder) RPCConfig(rpc config.RPC) *Builder {
	b.rpc = rpc
	return b
}

// Factory sets the transport factory used to build per-endpoint clients.
func (b *Builder) Factory(factory transport.Factory) *Builder {
	b.factory = factory
	return b
}

// GRPCStub wires a gRPC transport using the given stub adapter.
func (b *Builder) GRPCStub(stub transport.StubBuilder) *Builder {
	b.factory = transport.NewGRPCFactory(b.rpc, stub, b.logger)
	return b
}

// Logger sets the logger; a no-op logger is used when unset.
func (b *Builder) Logger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// MetricsRegisterer sets where client metrics are registered. A private
// registry is used when unset.
func (b *Builder) MetricsRegisterer(reg prometheus.Registerer) *Builder {
	b.registerer = reg
	return b
}

// Build assembles the client.
func (b *Builder) Build() (DbClient, error) {
	if b.endpoint == "" {
		return nil, dberrors.Client("endpoint is required")
	}
	if b.factory == nil {
		return nil, dberrors.Client("transport factory is required")
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := metrics.New(b.registerer)

	switch b.mode {
	case Direct:
		defaultEndpoint, err := model.ParseEndpoint(b.endpoint)
		if err != nil {
			return nil, dberrors.Clientf("failed to parse default endpoint %q: %v", b.endpoint, err)
		}
		return &routedClient{
			router:          routing.NewTableRouter(defaultEndpoint, b.factory, m, logger),
			pool:            pool.New(b.factory, logger),
			rpc:             b.rpc,
			defaultDatabase: b.defaultDatabase,
			logger:          logger,
			metrics:         m,
		}, nil
	case Proxy:
		return &directClient{
			endpoint:        b.endpoint,
			factory:         b.factory,
			rpc:             b.rpc,
			defaultDatabase: b.defaultDatabase,
			logger:          logger,
			metrics:         m,
		}, nil
	default:
		return nil, dberrors.Clientf("unknown mode %d", b.mode)
	}
}
