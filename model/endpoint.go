package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Endpoint identifies a single LuminarDB server instance.
//
// It is an immutable value type and is used as a map key by the route
// cache and the client pool.
type Endpoint struct {
	Addr string
	Port uint32
}

// NewEndpoint creates an endpoint from an address and port.
func NewEndpoint(addr string, port uint32) Endpoint {
	return Endpoint{Addr: addr, Port: port}
}

// String renders the endpoint as "addr:port".
func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Addr, e.Port)
}

// ParseEndpoint parses an "addr:port" string into an Endpoint.
func ParseEndpoint(s string) (Endpoint, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return Endpoint{}, fmt.Errorf("endpoint %q: missing ':' separator", s)
	}

	addr, rawPort := s[:idx], s[idx+1:]
	if addr == "" {
		return Endpoint{}, fmt.Errorf("endpoint %q: empty address", s)
	}

	port, err := strconv.ParseUint(rawPort, 10, 32)
	if err != nil {
		return Endpoint{}, fmt.Errorf("endpoint %q: invalid port %q: %w", s, rawPort, err)
	}
	if port > 65535 {
		return Endpoint{}, fmt.Errorf("endpoint %q: port %d out of range", s, port)
	}

	return Endpoint{Addr: addr, Port: uint32(port)}, nil
}
