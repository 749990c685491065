// Package rpc exposes the ledger's DAG API: mirrors the original Dag trait
// (get_dag, list_transactions, create_transaction, sign_transaction,
// get_mem_transactions, publish_transaction) as plain Go methods on
// Service, with thin net/http handlers wired the way the teacher's
// core/node.go Start wires its mux.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/andromeda-dag/node/account"
	"github.com/andromeda-dag/node/dag"
	"github.com/andromeda-dag/node/proposal"
	"github.com/andromeda-dag/node/syncer"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
)

// ErrHeadUnresolved is returned by CreateTransaction when the ledger has no
// node with a resolved state entry to build the next transaction on.
var ErrHeadUnresolved = errors.New("rpc: no resolved head to build a transaction on")

// Service implements the node's DAG API against a live System and Machine.
type Service struct {
	system  *proposal.System
	machine *syncer.Machine
	mem     *memTxPool
}

// NewService constructs a Service over system's ledger and the syncer
// machine used to broadcast newly created transactions. Staged
// transactions are persisted under dataDir/mem so they survive a restart
// before publication.
func NewService(system *proposal.System, machine *syncer.Machine, dataDir string) (*Service, error) {
	mem, err := loadMemTxPool(dataDir)
	if err != nil {
		return nil, err
	}
	return &Service{system: system, machine: machine, mem: mem}, nil
}

// GetDAG returns every node currently materialized in the ledger,
// skipping indices the graph can't fully hydrate.
func (s *Service) GetDAG() []*dag.Node {
	g := s.system.Ledger()
	nodes := make([]*dag.Node, 0, g.Len())
	for i := 0; i < g.Len(); i++ {
		n, err := g.Get(i)
		if err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// ListTransactions returns the hash of every transaction stored in the
// ledger.
func (s *Service) ListTransactions() []xhash.Hash {
	return s.system.Ledger().Hashes()
}

// CreateTransaction builds an unsigned transaction spending from sender to
// recipient, choosing a nonce and parent set the way the original
// create_tx does: parents are the unresolved children of the most
// recently executed head, or the head itself when it has none, and the
// nonce is one past the sender's last known nonce at that head.
func (s *Service) CreateTransaction(sender, recipient xsig.Address, value *big.Int, payload []byte) (*dag.Transaction, error) {
	g := s.system.Ledger()

	head, ok := g.ObtainExecutedHead()
	if !ok {
		return nil, ErrHeadUnresolved
	}

	parents := g.UnresolvedChildren(head.Hash)
	if len(parents) == 0 {
		parents = []xhash.Hash{head.Hash}
	}

	nonce := uint64(0)
	if last, ok := head.StateEntry.Nonces[sender]; ok {
		nonce = last + 1
	}

	tx := dag.NewTransaction(nonce, sender, recipient, value, payload, parents)

	merged, perParent, err := g.ResolveParentNodes(tx.Data.Parents)
	if err != nil {
		return nil, fmt.Errorf("rpc: failed to resolve parent state for new transaction: %w", err)
	}
	tx.RegisterParentalState(&merged.Hash, perParent)

	if err := s.mem.put(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// SignTransaction signs the pending transaction identified by hash with
// the key loaded from ks, and returns the resulting signature.
func (s *Service) SignTransaction(hash xhash.Hash, ks account.Keystore) (*xsig.Signature, error) {
	tx, ok := s.mem.get(hash)
	if !ok {
		return nil, fmt.Errorf("rpc: no pending transaction %s", hash)
	}

	priv, err := ks.Load()
	if err != nil {
		return nil, fmt.Errorf("rpc: failed to load signing key: %w", err)
	}

	if err := dag.Sign(tx, priv); err != nil {
		return nil, err
	}
	if err := s.mem.put(tx); err != nil {
		return nil, err
	}
	return tx.Signature, nil
}

// GetMemTransactions returns the hash of every transaction awaiting
// signature or publication in the in-memory pool.
func (s *Service) GetMemTransactions() []xhash.Hash {
	return s.mem.hashes()
}

// PublishTransaction pushes a signed pending transaction into the ledger
// by wrapping it in an append proposal and executing it immediately, then
// advertises the new node over the DHT.
func (s *Service) PublishTransaction(ctx context.Context, hash xhash.Hash) error {
	tx, ok := s.mem.get(hash)
	if !ok {
		return fmt.Errorf("rpc: no pending transaction %s", hash)
	}
	if tx.Signature == nil {
		return fmt.Errorf("rpc: transaction %s is not signed", hash)
	}

	p := proposal.NewProposal("publish_transaction", proposal.ProposalData{
		Path: proposal.TargetLedgerTransactions,
		Operation: proposal.Operation{
			Kind:          proposal.Append,
			ValueToAppend: dag.EncodeTransaction(tx),
		},
	})
	s.system.RegisterProposal(p)
	if err := s.system.ExecuteProposal(p.ProposalID); err != nil {
		var already *dag.AlreadyExecuted
		if !errors.As(err, &already) {
			return err
		}
	}

	if err := s.mem.delete(hash); err != nil {
		return err
	}

	if s.machine != nil {
		if err := s.machine.AdvertiseRoot(ctx); err != nil {
			return fmt.Errorf("rpc: published but failed to advertise: %w", err)
		}
	}
	return nil
}
