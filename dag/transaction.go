// Package dag implements the transaction DAG ledger: transactions that
// reference one or more parents, the per-node state entries derived from
// executing them, and the Graph that stores and persists the whole
// structure. Grounded on original_source/src/core/types/transaction.rs and
// graph.rs, reworked onto this module's xhash/xsig/xcodec/state packages
// and persisted with badger in place of the original's sled store.
package dag

import (
	"crypto/ed25519"
	"math/big"
	"time"

	"github.com/andromeda-dag/node/xcodec"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
)

// TransactionData is the signed, hashed portion of a Transaction.
type TransactionData struct {
	Nonce           uint64
	Sender          xsig.Address
	Recipient       xsig.Address
	Value           *big.Int
	Payload         []byte
	Parents         []xhash.Hash
	ParentReceipts  *ReceiptMap
	ParentStateHash *xhash.Hash
	Timestamp       time.Time
}

// CanonicalBytes serializes d in the fixed field order the hash is
// computed over. Parents are encoded in the order supplied, since they
// describe the DAG edges a client actually chose, not an unordered set;
// every other field is either scalar or, for the receipt map, inherently
// ordered by construction.
func (d *TransactionData) CanonicalBytes() []byte {
	w := xcodec.NewWriter()
	w.Uint64(d.Nonce)
	w.BytesField(d.Sender.Bytes())
	w.BytesField(d.Recipient.Bytes())
	value := d.Value
	if value == nil {
		value = big.NewInt(0)
	}
	w.BytesField(value.Bytes())
	w.BytesField(d.Payload)

	w.Uint64(uint64(len(d.Parents)))
	for _, p := range d.Parents {
		w.BytesField(p.Bytes())
	}

	w.Optional(d.ParentReceipts != nil, func() {
		w.Uint64(uint64(len(d.ParentReceipts.AssociatedTransactions)))
		for i, tx := range d.ParentReceipts.AssociatedTransactions {
			w.BytesField(tx.Bytes())
			w.BytesField(d.ParentReceipts.Receipts[i].StateHash.Bytes())
		}
	})

	w.Optional(d.ParentStateHash != nil, func() {
		w.BytesField(d.ParentStateHash.Bytes())
	})

	w.Uint64(uint64(d.Timestamp.UnixNano()))

	return w.Bytes()
}

// Hash returns the content hash of d.
func (d *TransactionData) Hash() xhash.Hash {
	return xhash.Sum(d.CanonicalBytes())
}

// Transaction is a single edge-bearing unit of the ledger: a transfer from
// Sender to Recipient, referencing one or more parent transactions, with
// an optional signature authenticating Sender.
type Transaction struct {
	Data      TransactionData
	Hash      xhash.Hash
	Signature *xsig.Signature
	Genesis   bool
}

// NewTransaction constructs an unsigned transaction with the given
// contents. The zero-hash parent convention (a single xhash.Zero parent)
// marks a network genesis transaction.
func NewTransaction(nonce uint64, sender, recipient xsig.Address, value *big.Int, payload []byte, parents []xhash.Hash) *Transaction {
	data := TransactionData{
		Nonce:     nonce,
		Sender:    sender,
		Recipient: recipient,
		Value:     new(big.Int).Set(value),
		Payload:   append([]byte(nil), payload...),
		Parents:   append([]xhash.Hash(nil), parents...),
		Timestamp: time.Now().UTC(),
	}
	tx := &Transaction{Data: data}
	tx.Hash = data.Hash()
	tx.Genesis = len(parents) == 1 && parents[0].IsZero()
	return tx
}

// Sign signs tx's hash with priv and attaches the resulting Signature. It
// returns ErrSenderKeyMismatch if priv's derived address doesn't match the
// transaction's declared sender, mirroring sign_transaction's address
// check in original_source/src/core/types/transaction.rs.
func Sign(tx *Transaction, priv ed25519.PrivateKey) error {
	derived := xsig.AddressFromPublicKey(priv.Public().(ed25519.PublicKey))
	if derived != tx.Data.Sender {
		return ErrSenderKeyMismatch
	}
	sig := xsig.Sign(priv, tx.Hash)
	tx.Signature = &sig
	return nil
}

// Validate checks the structural invariants a transaction must satisfy
// before it can be resolved against ledger state, independent of any
// particular submission path: every non-genesis transaction must declare
// at least one parent. Callers that also need signature/state checks
// still need to run those separately (VerifySignature, ResolveParentNodes).
func (tx *Transaction) Validate() error {
	if !tx.Genesis && len(tx.Data.Parents) == 0 {
		return ErrMissingParents
	}
	return nil
}

// VerifySignature reports whether tx carries a signature that verifies
// against its hash and authenticates its declared sender.
func (tx *Transaction) VerifySignature() bool {
	if tx.Signature == nil {
		return false
	}
	return xsig.VerifyAndAuthenticate(*tx.Signature, tx.Hash, tx.Data.Sender) == nil
}

// RegisterParentalState stamps tx with the merged parental state's hash
// and a receipt for each resolved individual parent state, then rehashes
// tx so peers can verify the work was actually done. Grounded on
// Transaction::register_parental_state.
func (tx *Transaction) RegisterParentalState(merged *xhash.Hash, parentEntries map[xhash.Hash]xhash.Hash) {
	tx.Data.ParentStateHash = merged

	receipts := &ReceiptMap{}
	for _, parentHash := range tx.Data.Parents {
		stateHash, ok := parentEntries[parentHash]
		if !ok {
			continue
		}
		receipts.Add(parentHash, Receipt{StateHash: stateHash})
	}
	tx.Data.ParentReceipts = receipts

	tx.Hash = tx.Data.Hash()
}
