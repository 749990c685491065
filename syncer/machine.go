package syncer

import (
	"context"
	"errors"
	"sync"

	"github.com/andromeda-dag/node/dag"
	"github.com/andromeda-dag/node/proposal"
	"github.com/andromeda-dag/node/xhash"
)

// Machine drives the root → tx → next → tx synchronization loop against a
// DHT and a local proposal.System, converging the System's graph onto a
// remote peer's DAG one transaction at a time. Grounded on
// original_source/src/p2p/kademlia.rs's inject_event handler, restructured
// from an event callback into an explicit driven loop.
type Machine struct {
	mu        sync.Mutex
	dht       DHT
	system    *proposal.System
	peerCount func() int

	// shouldBroadcastDag is set when a PutRecord advertisement fails,
	// signaling that this node should fall back to broadcasting its DAG
	// directly to peers rather than relying on the DHT, per
	// original_source's should_broadcast_dag flag.
	shouldBroadcastDag bool
}

// NewMachine builds a Machine over dht and system. peerCount reports the
// current known peer count, consulted fresh at each GetRecord issuance to
// size that query's quorum.
func NewMachine(d DHT, system *proposal.System, peerCount func() int) *Machine {
	return &Machine{dht: d, system: system, peerCount: peerCount}
}

// ShouldBroadcastDag reports whether a prior PutRecord failure means this
// node should fall back to direct DAG broadcast.
func (m *Machine) ShouldBroadcastDag() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shouldBroadcastDag
}

func (m *Machine) quorum() int {
	return Quorum(m.peerCount())
}

// AdvertiseRoot publishes the local graph's genesis hash under RootKey,
// every node's transaction record under its TransactionKey, and, for every
// node that has at least one child, the most-recently-pushed child's hash
// under that node's NextKey. A PutRecord failure sets ShouldBroadcastDag
// and is returned to the caller so it can decide whether to retry.
func (m *Machine) AdvertiseRoot(ctx context.Context) error {
	g := m.system.Ledger()
	if g.Len() == 0 {
		return errors.New("syncer: cannot advertise an empty graph")
	}

	root, err := g.GetHeader(0)
	if err != nil {
		return err
	}

	if err := m.put(ctx, RootKey, root.Hash.Bytes()); err != nil {
		return err
	}

	for i := 0; i < g.Len(); i++ {
		node, err := g.GetHeader(i)
		if err != nil {
			return err
		}
		if err := m.put(ctx, TransactionKey(node.Hash), dag.EncodeTransaction(node.Transaction)); err != nil {
			return err
		}

		children := g.Children(node.Hash)
		if len(children) == 0 {
			continue
		}
		successor := children[len(children)-1]
		if err := m.put(ctx, NextKey(node.Hash), successor.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

func (m *Machine) put(ctx context.Context, key string, value []byte) error {
	if err := m.dht.PutRecord(ctx, key, value); err != nil {
		m.mu.Lock()
		m.shouldBroadcastDag = true
		m.mu.Unlock()
		return err
	}
	return nil
}

// SyncFromPeer runs the root → tx → next → tx loop to completion: it
// fetches the peer's root hash, installs or proposes each transaction in
// turn, and keeps following NextKey hops until a lookup comes back empty.
// AlreadyExecuted results (from either a local graph already holding the
// root, or any later hop's transaction already present) are
// swallowed as the idempotent no-ops spec §7 calls for; any other error
// aborts the walk.
func (m *Machine) SyncFromPeer(ctx context.Context) error {
	rootBytes, err := m.dht.GetRecord(ctx, RootKey, m.quorum())
	if err != nil {
		return err
	}
	rootHash, err := xhash.FromBytes(rootBytes)
	if err != nil {
		return err
	}

	hash := rootHash
	for {
		if err := m.installOrPropose(ctx, hash); err != nil {
			var already *dag.AlreadyExecuted
			if !errors.As(err, &already) {
				return err
			}
		}

		nextBytes, err := m.dht.GetRecord(ctx, NextKey(hash), m.quorum())
		if err != nil {
			var notFound *ErrNoLookupResults
			if errors.As(err, &notFound) {
				return nil
			}
			return err
		}
		nextHash, err := xhash.FromBytes(nextBytes)
		if err != nil {
			return err
		}
		hash = nextHash
	}
}

func (m *Machine) installOrPropose(ctx context.Context, hash xhash.Hash) error {
	txBytes, err := m.dht.GetRecord(ctx, TransactionKey(hash), m.quorum())
	if err != nil {
		return err
	}
	tx, err := dag.DecodeTransaction(txBytes)
	if err != nil {
		return err
	}

	g := m.system.Ledger()
	if g.Len() == 0 {
		g.ResetToGenesis(tx)
		return nil
	}

	if g.Contains(tx.Hash) {
		return &dag.AlreadyExecuted{Hash: tx.Hash}
	}

	p := proposal.NewProposal("sync_child", proposal.ProposalData{
		Path: proposal.TargetLedgerTransactions,
		Operation: proposal.Operation{
			Kind:          proposal.Append,
			ValueToAppend: txBytes,
		},
	})
	m.system.PushProposal(p)
	return m.system.ExecuteProposal(p.ProposalID)
}
