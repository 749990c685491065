package dag

import (
	"github.com/andromeda-dag/node/state"
	"github.com/andromeda-dag/node/xhash"
)

// Node pairs a transaction with the state entry produced by executing it.
// StateEntry is nil for a "partial" node: one whose transaction header is
// known but whose state has not (or not yet) been hydrated from storage.
type Node struct {
	Transaction *Transaction
	StateEntry  *state.Entry
	Hash        xhash.Hash
}

// NewNode builds a Node from a transaction and its (possibly absent)
// state entry.
func NewNode(tx *Transaction, entry *state.Entry) *Node {
	return &Node{Transaction: tx, StateEntry: entry, Hash: tx.Hash}
}

// VerifyContents reports whether the node's cached hash still matches its
// transaction's hash.
func (n *Node) VerifyContents() bool {
	return n.Transaction.Hash == n.Hash
}

// PerformValidityChecks runs every cheap validity check available on a
// node: content consistency and signature verification. It does not
// re-execute the transaction against state.
func (n *Node) PerformValidityChecks() bool {
	if !n.VerifyContents() {
		return false
	}
	return n.Transaction.VerifySignature()
}
