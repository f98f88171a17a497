package luminar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminardb/luminar-go/config"
)

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("direct")
	require.NoError(t, err)
	assert.Equal(t, Direct, mode)

	mode, err = ParseMode("proxy")
	require.NoError(t, err)
	assert.Equal(t, Proxy, mode)

	_, err = ParseMode("cluster")
	assert.Error(t, err)
}

func TestBuildRequiresFactory(t *testing.T) {
	_, err := NewBuilder("127.0.0.1:8831", Direct).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "factory")
}

func TestBuildRequiresEndpoint(t *testing.T) {
	_, err := NewBuilder("", Direct).Factory(newMapFactory()).Build()
	require.Error(t, err)
}

func TestBuildDirectRejectsMalformedEndpoint(t *testing.T) {
	_, err := NewBuilder("not-an-endpoint", Direct).Factory(newMapFactory()).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestBuildDirect(t *testing.T) {
	client, err := NewBuilder("127.0.0.1:8831", Direct).
		Factory(newMapFactory()).
		DefaultDatabase("public").
		Build()
	require.NoError(t, err)
	_, ok := client.(*routedClient)
	assert.True(t, ok)
}

func TestBuildProxy(t *testing.T) {
	client, err := NewBuilder("127.0.0.1:8831", Proxy).
		Factory(newMapFactory()).
		DefaultDatabase("public").
		Build()
	require.NoError(t, err)
	_, ok := client.(*directClient)
	assert.True(t, ok)
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Endpoint = "127.0.0.1:8831"
	cfg.Mode = config.ModeProxy
	cfg.DefaultDatabase = "metrics"

	b, err := FromConfig(cfg)
	require.NoError(t, err)

	client, err := b.Factory(newMapFactory()).Build()
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestFromConfigInvalid(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := FromConfig(cfg)
	assert.Error(t, err)
}
