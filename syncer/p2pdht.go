package syncer

import (
	"context"

	kaddht "github.com/libp2p/go-libp2p-kad-dht"
)

// P2PDHT adapts a *kaddht.IpfsDHT to the Machine's DHT interface. Grounded
// on orbas1-Synnergy's go.mod, which carries the full go-libp2p-kad-dht
// stack as a dependency for exactly this purpose even though that repo's
// own network.go only reaches for bare libp2p pubsub; this module is
// where that dependency actually gets exercised.
type P2PDHT struct {
	dht *kaddht.IpfsDHT
}

// NewP2PDHT wraps an already-bootstrapped Kademlia DHT instance.
func NewP2PDHT(d *kaddht.IpfsDHT) *P2PDHT {
	return &P2PDHT{dht: d}
}

// GetRecord fetches the value stored at key. The quorum parameter is
// accepted for interface conformance; go-libp2p-kad-dht's GetValue already
// internally queries enough peers to satisfy its own quorum configuration,
// so it isn't threaded through further here.
func (p *P2PDHT) GetRecord(ctx context.Context, key string, _ int) ([]byte, error) {
	return p.dht.GetValue(ctx, key)
}

// PutRecord advertises value under key to the DHT.
func (p *P2PDHT) PutRecord(ctx context.Context, key string, value []byte) error {
	return p.dht.PutValue(ctx, key, value)
}
