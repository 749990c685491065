package p2pnet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewHostWithNoBootstrapPeers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h, err := New(ctx, Config{ListenAddr: "/ip4/127.0.0.1/tcp/0"})
	require.NoError(t, err)
	defer h.Close()

	require.Equal(t, 0, h.PeerCount())
	require.NotNil(t, h.DHT())
}

func TestDefaultConfigUsesAndromedaBootstrapPeers(t *testing.T) {
	cfg := DefaultConfig()
	require.NotEmpty(t, cfg.BootstrapPeers)
	require.Equal(t, DefaultBootstrapPeers, cfg.BootstrapPeers)
}
