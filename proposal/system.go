package proposal

import (
	"crypto/ed25519"
	"fmt"
	"sync"

	"github.com/andromeda-dag/node/dag"
	"github.com/andromeda-dag/node/state"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
)

// TargetLedgerTransactions is the one logical path System currently
// understands. Anything else is rejected with UnknownTarget, per
// spec §4.3.
const TargetLedgerTransactions = "ledger::transactions"

// UnknownTarget is returned when a proposal names a path System doesn't
// recognize.
type UnknownTarget struct {
	Path string
}

func (e *UnknownTarget) Error() string {
	return fmt.Sprintf("proposal: unknown target path %q", e.Path)
}

// System owns the node's Graph, its local keypair, and the set of
// proposals pending execution. The pending and executed sets are guarded
// by mu, which also serializes ExecuteProposal calls; the Graph carries its
// own lock and is reachable without mu through Ledger.
type System struct {
	mu      sync.RWMutex
	ledger  *dag.Graph
	pending map[xhash.Hash]*Proposal
	done    map[xhash.Hash]struct{}
	keypair ed25519.PrivateKey
}

// NewSystem wraps ledger and keypair in a System with an empty pending set.
func NewSystem(ledger *dag.Graph, keypair ed25519.PrivateKey) *System {
	return &System{
		ledger:  ledger,
		pending: map[xhash.Hash]*Proposal{},
		done:    map[xhash.Hash]struct{}{},
		keypair: keypair,
	}
}

// Ledger returns the System's underlying graph.
func (s *System) Ledger() *dag.Graph { return s.ledger }

// PushProposal inserts p into the pending set. Re-pushing a proposal with
// an already-known ID is a no-op, matching spec §4.3's idempotence rule.
func (s *System) PushProposal(p *Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.pending[p.ProposalID]; exists {
		return
	}
	s.pending[p.ProposalID] = p
}

// RegisterProposal pushes p into the pending set, exactly as PushProposal
// does. It records no outbound or broadcast state for p, and sends
// nothing over the network.
func (s *System) RegisterProposal(p *Proposal) {
	s.PushProposal(p)
}

// RecordVote appends a vote to the named pending proposal, if it exists.
func (s *System) RecordVote(proposalID xhash.Hash, v Vote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[proposalID]
	if !ok {
		return false
	}
	p.RecordVote(v)
	return true
}

// ExecuteProposal dispatches the pending proposal named by id according to
// its operation. Re-executing a proposal that has already run, or
// appending a transaction already present in the graph, returns
// *dag.AlreadyExecuted and leaves the graph unchanged; callers treat it as
// success, per spec §7's idempotence table.
func (s *System) ExecuteProposal(id xhash.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, already := s.done[id]; already {
		return &dag.AlreadyExecuted{Hash: id}
	}

	p, ok := s.pending[id]
	if !ok {
		return &dag.NoLookupResults{Key: id}
	}

	if p.Data.Path != TargetLedgerTransactions {
		return &UnknownTarget{Path: p.Data.Path}
	}

	switch p.Data.Operation.Kind {
	case Append:
		if err := s.executeAppend(p.Data.Operation.ValueToAppend); err != nil {
			return err
		}
	default:
		return &UnknownTarget{Path: p.Data.Path}
	}

	delete(s.pending, id)
	s.done[id] = struct{}{}
	return nil
}

func (s *System) executeAppend(value []byte) error {
	tx, err := dag.DecodeTransaction(value)
	if err != nil {
		return err
	}

	if s.ledger.Contains(tx.Hash) {
		return &dag.AlreadyExecuted{Hash: tx.Hash}
	}

	if err := tx.Validate(); err != nil {
		return err
	}

	if !tx.VerifySignature() {
		return xsig.ErrInvalidSignature
	}

	merged, _, err := s.ledger.ResolveParentNodes(tx.Data.Parents)
	if err != nil {
		return err
	}

	entry, err := state.Execute(merged, tx.Data.Sender, tx.Data.Recipient, tx.Data.Value, tx.Data.Nonce)
	if err != nil {
		return err
	}

	s.ledger.Push(tx, entry)
	return nil
}
