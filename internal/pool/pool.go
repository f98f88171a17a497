// Package pool caches one transport client per endpoint.
package pool

import (
	"sync"

	"go.uber.org/zap"

	"github.com/luminardb/luminar-go/model"
	"github.com/luminardb/luminar-go/transport"
)

// ClientPool lazily creates and caches one transport client per endpoint.
//
// The pool only grows; there is no eviction. This is an accepted
// limitation: the set of endpoints a client talks to is bounded by the
// cluster size.
type ClientPool struct {
	factory transport.Factory
	logger  *zap.Logger

	mu      sync.RWMutex
	clients map[model.Endpoint]transport.Client
}

// New creates an empty pool backed by the given factory.
func New(factory transport.Factory, logger *zap.Logger) *ClientPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientPool{
		factory: factory,
		logger:  logger,
		clients: make(map[model.Endpoint]transport.Client),
	}
}

// GetOrCreate returns the cached client for the endpoint, building it
// first if absent. Construction happens under the write lock, so racing
// callers always end up sharing a single client per endpoint.
func (p *ClientPool) GetOrCreate(endpoint model.Endpoint) (transport.Client, error) {
	p.mu.RLock()
	client, exists := p.clients[endpoint]
	p.mu.RUnlock()

	if exists {
		return client, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check
	if client, exists := p.clients[endpoint]; exists {
		return client, nil
	}

	client, err := p.factory.Build(endpoint.String())
	if err != nil {
		return nil, err
	}

	p.clients[endpoint] = client
	p.logger.Debug("created transport client", zap.String("endpoint", endpoint.String()))
	return client, nil
}

// Size returns the number of cached clients.
func (p *ClientPool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}
