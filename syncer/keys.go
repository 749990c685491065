// Package syncer implements the DHT-driven synchronization state machine:
// a node advertises its DAG root and transactions under well-known key
// families, and walks a peer's advertised chain by issuing GetRecord
// queries, converging its local Graph onto the remote one. Grounded on
// original_source/src/p2p/kademlia.rs's inject_event handler and
// sync::{transaction_with_hash_key, next_transaction_key}.
package syncer

import "github.com/andromeda-dag/node/xhash"

// RootKey is the well-known key a node advertises its current DAG root
// hash under.
const RootKey = "ledger::transactions::root"

// TransactionKey returns the key a transaction's full record is stored
// under: the literal prefix concatenated with h's raw bytes. A Go string
// is just a byte sequence, so this is the literal's bytes followed by the
// hash's 32 raw bytes, not its hex encoding — every peer on the network
// must derive the same bytes for the same hash.
func TransactionKey(h xhash.Hash) string {
	return "ledger::transactions::tx::" + string(h.Bytes())
}

// NextKey returns the key under which the hash of the transaction
// immediately following h in a peer's DAG is advertised, built the same
// literal-prefix-plus-raw-bytes way as TransactionKey.
func NextKey(h xhash.Hash) string {
	return "ledger::transactions::next::" + string(h.Bytes())
}
