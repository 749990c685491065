// Package xsig provides address derivation and Ed25519 signing for the
// ledger core, following the key-handling idiom of the teacher's
// shared/transaction.go and the pack's wallet.go (orbas1-Synnergy).
package xsig

import (
	"crypto/ed25519"
	"encoding/hex"
	"sort"

	"github.com/andromeda-dag/node/xhash"
)

// Address is derived deterministically from an Ed25519 public key: the
// Blake3 hash of the raw public key bytes, same width as xhash.Hash.
type Address xhash.Hash

// ZeroAddress is the distinguished empty address.
var ZeroAddress = Address{}

// AddressFromPublicKey derives the Address for an Ed25519 public key.
func AddressFromPublicKey(pub ed25519.PublicKey) Address {
	return Address(xhash.Sum(pub))
}

// Bytes returns a copy of the address's underlying bytes.
func (a Address) Bytes() []byte {
	return xhash.Hash(a).Bytes()
}

// String returns the lowercase hex form of the address.
func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Less reports whether a sorts before other, byte-wise. SortAddresses uses
// it; canonical serialization sorts map keys itself in xcodec.SortedMap.
func (a Address) Less(other Address) bool {
	return xhash.Hash(a).Less(xhash.Hash(other))
}

// AddressFromHex parses the lowercase hex form produced by String.
func AddressFromHex(s string) (Address, error) {
	h, err := xhash.FromHex(s)
	if err != nil {
		return Address{}, err
	}
	return Address(h), nil
}

// SortAddresses returns a sorted copy of addrs, ascending by bytes.
func SortAddresses(addrs []Address) []Address {
	out := make([]Address, len(addrs))
	copy(out, addrs)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
