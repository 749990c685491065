// Package p2pnet bootstraps the libp2p host and Kademlia DHT the syncer
// package drives. Grounded on orbas1-Synnergy's core/network.go NewNode,
// trimmed to what the sync state machine needs (a host plus a DHT client)
// and carrying the dht stack that repo's go.mod lists but never exercises.
package p2pnet

import (
	"context"
	"fmt"
	"log"

	"github.com/libp2p/go-libp2p"
	kaddht "github.com/libp2p/go-libp2p-kad-dht"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
)

// DefaultNetworkName identifies the default gossip network new nodes join
// absent an explicit configuration override.
const DefaultNetworkName = "andromeda"

// DefaultBootstrapPeers lists the multiaddrs a node dials on startup when
// no peer list is supplied. These are placeholders for the default
// "andromeda" network; real deployments should override them via
// Config.BootstrapPeers.
var DefaultBootstrapPeers = []string{
	"/dnsaddr/bootstrap-1.andromeda.network/p2p/12D3KooWAndromedaBootstrapPeerOne",
	"/dnsaddr/bootstrap-2.andromeda.network/p2p/12D3KooWAndromedaBootstrapPeerTwo",
}

// Config controls how a Host is constructed.
type Config struct {
	ListenAddr     string
	BootstrapPeers []string
}

// DefaultConfig returns a Config listening on an OS-assigned TCP port and
// dialing the default "andromeda" bootstrap peers.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     "/ip4/0.0.0.0/tcp/0",
		BootstrapPeers: DefaultBootstrapPeers,
	}
}

// Host wraps a libp2p host and its Kademlia DHT client, tracking connected
// peer count for the syncer's quorum sizing.
type Host struct {
	host host.Host
	dht  *kaddht.IpfsDHT
	ctx  context.Context
}

// New creates and bootstraps a libp2p host, starts a Kademlia DHT over it
// with the library's default options, and dials cfg.BootstrapPeers.
func New(ctx context.Context, cfg Config) (*Host, error) {
	h, err := libp2p.New(libp2p.ListenAddrStrings(cfg.ListenAddr))
	if err != nil {
		return nil, fmt.Errorf("p2pnet: failed to create host: %w", err)
	}

	kad, err := kaddht.New(ctx, h)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("p2pnet: failed to create dht: %w", err)
	}

	if err := kad.Bootstrap(ctx); err != nil {
		log.Printf("p2pnet: dht bootstrap warning: %v", err)
	}

	n := &Host{host: h, dht: kad, ctx: ctx}
	if err := n.dialBootstrapPeers(cfg.BootstrapPeers); err != nil {
		log.Printf("p2pnet: bootstrap dial warning: %v", err)
	}

	return n, nil
}

func (n *Host) dialBootstrapPeers(addrs []string) error {
	for _, addr := range addrs {
		maddr, err := multiaddr.NewMultiaddr(addr)
		if err != nil {
			log.Printf("p2pnet: skipping invalid bootstrap addr %q: %v", addr, err)
			continue
		}
		info, err := peer.AddrInfoFromP2pAddr(maddr)
		if err != nil {
			log.Printf("p2pnet: skipping unparseable bootstrap addr %q: %v", addr, err)
			continue
		}
		if err := n.host.Connect(n.ctx, *info); err != nil {
			log.Printf("p2pnet: failed to dial bootstrap peer %s: %v", info.ID, err)
		}
	}
	return nil
}

// DHT returns the host's Kademlia client, for wiring into syncer.P2PDHT.
func (n *Host) DHT() *kaddht.IpfsDHT { return n.dht }

// PeerCount reports the number of peers currently connected to the host,
// used by the syncer to size its quorum.
func (n *Host) PeerCount() int {
	return len(n.host.Network().Peers())
}

// Close shuts down the DHT and host.
func (n *Host) Close() error {
	if err := n.dht.Close(); err != nil {
		return err
	}
	return n.host.Close()
}
