// Package config holds the LuminarDB client configuration.
package config

import (
	"errors"
	"time"
)

// Config represents the client configuration.
type Config struct {
	// Endpoint is the bootstrap endpoint. In direct mode it serves route
	// lookups and acts as the fallback target for unrouted tables; in
	// proxy mode it receives every request.
	Endpoint        string `mapstructure:"endpoint"`
	Mode            string `mapstructure:"mode"`
	DefaultDatabase string `mapstructure:"default_database"`
	RPC             RPC    `mapstructure:"rpc"`
}

// RPC represents the underlying gRPC channel configuration.
type RPC struct {
	// MaxSendMsgSize is the max length of a message sent to the server.
	MaxSendMsgSize int `mapstructure:"max_send_msg_size"`
	// MaxRecvMsgSize is the max length of a message received from the server.
	MaxRecvMsgSize int `mapstructure:"max_recv_msg_size"`
	// KeepAliveInterval is the interval between http2 ping frames.
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval"`
	// KeepAliveTimeout closes the connection if a ping is not acknowledged.
	KeepAliveTimeout time.Duration `mapstructure:"keep_alive_timeout"`
	// ConnectTimeout bounds connection establishment.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	// DefaultWriteTimeout bounds a write RPC unless overridden per call.
	DefaultWriteTimeout time.Duration `mapstructure:"default_write_timeout"`
	// DefaultQueryTimeout bounds a query RPC unless overridden per call.
	DefaultQueryTimeout time.Duration `mapstructure:"default_query_timeout"`
}

// Mode values accepted in configuration.
const (
	ModeDirect = "direct"
	ModeProxy  = "proxy"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.Mode == "" {
		c.Mode = ModeDirect
	}
	if !isValidMode(c.Mode) {
		return errors.New("mode must be one of: direct, proxy")
	}
	if c.RPC.MaxSendMsgSize <= 0 && c.RPC.MaxSendMsgSize != -1 {
		return errors.New("rpc.max_send_msg_size must be positive or -1 for unlimited")
	}
	if c.RPC.MaxRecvMsgSize <= 0 && c.RPC.MaxRecvMsgSize != -1 {
		return errors.New("rpc.max_recv_msg_size must be positive or -1 for unlimited")
	}
	if c.RPC.ConnectTimeout <= 0 {
		return errors.New("rpc.connect_timeout must be positive")
	}
	if c.RPC.DefaultWriteTimeout <= 0 {
		return errors.New("rpc.default_write_timeout must be positive")
	}
	if c.RPC.DefaultQueryTimeout <= 0 {
		return errors.New("rpc.default_query_timeout must be positive")
	}
	return nil
}

// isValidMode checks if the access mode is valid.
func isValidMode(mode string) bool {
	switch mode {
	case ModeDirect, ModeProxy:
		return true
	default:
		return false
	}
}

// DefaultConfig returns default configuration values.
func DefaultConfig() *Config {
	return &Config{
		Mode: ModeDirect,
		RPC:  DefaultRPC(),
	}
}

// DefaultRPC returns default gRPC channel settings.
func DefaultRPC() RPC {
	return RPC{
		MaxSendMsgSize:      20 * (1 << 20),
		MaxRecvMsgSize:      1 << 30,
		KeepAliveInterval:   10 * time.Minute,
		KeepAliveTimeout:    3 * time.Second,
		ConnectTimeout:      3 * time.Second,
		DefaultWriteTimeout: 5 * time.Second,
		DefaultQueryTimeout: 60 * time.Second,
	}
}
