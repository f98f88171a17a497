package transport

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"

	"github.com/luminardb/luminar-go/config"
	"github.com/luminardb/luminar-go/dberrors"
	"github.com/luminardb/luminar-go/model"
)

// StubBuilder adapts a dialed gRPC connection into a transport Client.
//
// The generated service stubs live outside this core, so the adaptation
// is injected rather than imported.
type StubBuilder func(conn *grpc.ClientConn) Client

// GRPCFactory builds transport clients backed by gRPC connections.
type GRPCFactory struct {
	cfg    config.RPC
	stub   StubBuilder
	logger *zap.Logger
}

// NewGRPCFactory creates a factory dialing with the given channel settings.
func NewGRPCFactory(cfg config.RPC, stub StubBuilder, logger *zap.Logger) *GRPCFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCFactory{cfg: cfg, stub: stub, logger: logger}
}

// Build dials the endpoint and wraps the connection into a Client.
//
// Dialing is lazy; the connection is established on first use, bounded
// by the configured connect timeout.
func (f *GRPCFactory) Build(endpoint string) (Client, error) {
	if _, err := model.ParseEndpoint(endpoint); err != nil {
		return nil, dberrors.Clientf("malformed endpoint: %v", err)
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(f.cfg.MaxRecvMsgSize),
			grpc.MaxCallSendMsgSize(f.cfg.MaxSendMsgSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                f.cfg.KeepAliveInterval,
			Timeout:             f.cfg.KeepAliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithConnectParams(grpc.ConnectParams{
			MinConnectTimeout: f.cfg.ConnectTimeout,
		}),
	}

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, dberrors.Transport("failed to create channel to "+endpoint, err)
	}

	f.logger.Debug("created grpc channel", zap.String("endpoint", endpoint))
	return f.stub(conn), nil
}
