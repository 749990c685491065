// Package state implements the per-node account state entry: balances and
// nonces derived by executing a transaction against a parental state, and
// the deterministic merge of multiple parent states at a DAG join. Grounded
// on original_source/src/core/types/state.rs and transaction.rs's execute
// method, reworked into Go with an explicit error return in place of the
// original's silent unsigned-subtraction wraparound.
package state

import (
	"errors"
	"math/big"

	"github.com/andromeda-dag/node/xcodec"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
)

// ErrInsufficientBalance is returned by Execute when the sender's balance
// cannot cover the transaction's value. The original implementation this
// was ported from performs the equivalent unsigned subtraction without a
// bounds check; spec §9 requires this to be a hard error instead.
var ErrInsufficientBalance = errors.New("state: insufficient balance")

// Entry is an immutable snapshot of account balances and nonces as of a
// single transaction's execution. Its Hash is the canonical content hash
// of Balances and Nonces, computed via Seal.
type Entry struct {
	Balances map[xsig.Address]*big.Int
	Nonces   map[xsig.Address]uint64
	Hash     xhash.Hash
}

// NewEmptyEntry returns a sealed Entry with no balances or nonces.
func NewEmptyEntry() *Entry {
	return seal(map[xsig.Address]*big.Int{}, map[xsig.Address]uint64{})
}

// Balance returns addr's balance, or zero if the address is unknown.
func (e *Entry) Balance(addr xsig.Address) *big.Int {
	if v, ok := e.Balances[addr]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

// Nonce returns addr's nonce, or zero if the address is unknown.
func (e *Entry) Nonce(addr xsig.Address) uint64 {
	return e.Nonces[addr]
}

// SealForDecode rebuilds a sealed Entry from balances and nonces read back
// from storage or the wire. No hash is stored with an entry; it is
// recomputed from the decoded maps, and nothing compares it against a
// previously recorded hash.
func SealForDecode(balances map[xsig.Address]*big.Int, nonces map[xsig.Address]uint64) *Entry {
	return seal(balances, nonces)
}

// seal computes an Entry's canonical hash from its balances and nonces.
// Both maps are stored as given, without copying, and become owned by the
// Entry; callers must not mutate the maps passed in afterward.
func seal(balances map[xsig.Address]*big.Int, nonces map[xsig.Address]uint64) *Entry {
	e := &Entry{Balances: balances, Nonces: nonces}
	e.Hash = e.canonicalHash()
	return e
}

// canonicalHash serializes balances and nonces in address-sorted order and
// hashes the result, so that two Entry values with the same logical
// content always hash identically regardless of map iteration order.
func (e *Entry) canonicalHash() xhash.Hash {
	w := xcodec.NewWriter()

	balanceEntries := make([]xcodec.KV, 0, len(e.Balances))
	for addr, bal := range e.Balances {
		addr, bal := addr, bal
		balanceEntries = append(balanceEntries, xcodec.KV{
			Key: addr.Bytes(),
			Write: func(w *xcodec.Writer) {
				w.BytesField(bal.Bytes())
			},
		})
	}
	w.SortedMap(balanceEntries)

	nonceEntries := make([]xcodec.KV, 0, len(e.Nonces))
	for addr, n := range e.Nonces {
		addr, n := addr, n
		nonceEntries = append(nonceEntries, xcodec.KV{
			Key: addr.Bytes(),
			Write: func(w *xcodec.Writer) {
				w.Uint64(n)
			},
		})
	}
	w.SortedMap(nonceEntries)

	return xhash.Sum(w.Bytes())
}

// Execute derives the state entry that results from applying a transfer of
// value from sender to recipient at the given nonce, against prev. A nil
// prev (or one with no balances, matching the original implementation's
// "bootstrap" branch) is treated as the genesis case: the recipient simply
// receives value and no prior balance is consulted.
func Execute(prev *Entry, sender, recipient xsig.Address, value *big.Int, nonce uint64) (*Entry, error) {
	if prev == nil || len(prev.Balances) == 0 {
		balances := map[xsig.Address]*big.Int{
			recipient: new(big.Int).Set(value),
		}
		nonces := map[xsig.Address]uint64{
			sender: nonce,
		}
		return seal(balances, nonces), nil
	}

	senderBalance := prev.Balance(sender)
	if senderBalance.Cmp(value) < 0 {
		return nil, ErrInsufficientBalance
	}

	balances := make(map[xsig.Address]*big.Int, len(prev.Balances)+2)
	for addr, bal := range prev.Balances {
		balances[addr] = new(big.Int).Set(bal)
	}
	nonces := make(map[xsig.Address]uint64, len(prev.Nonces)+1)
	for addr, n := range prev.Nonces {
		nonces[addr] = n
	}

	// Debit the sender before crediting the recipient and re-read the
	// sender's balance out of the working map rather than prev: when
	// sender == recipient, the credit must land on top of the debit
	// already applied, not on prev's stale pre-debit balance.
	balances[sender] = new(big.Int).Sub(senderBalance, value)
	recipientBalance := big.NewInt(0)
	if v, ok := balances[recipient]; ok {
		recipientBalance = v
	}
	balances[recipient] = new(big.Int).Add(recipientBalance, value)
	nonces[sender] = nonce

	return seal(balances, nonces), nil
}
