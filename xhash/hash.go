// Package xhash provides the Blake3-256 content hash used throughout the
// ledger core to address transactions and state entries.
package xhash

import (
	"encoding/hex"
	"fmt"

	"lukechampine.com/blake3"
)

// Size is the width, in bytes, of a Hash.
const Size = 32

// Hash is a fixed-size content address. The zero value is the distinguished
// "zero hash" used by genesis transactions to mark a root parent.
type Hash [Size]byte

// Zero is the distinguished zero-hash used to mark a genesis transaction's
// root parent.
var Zero = Hash{}

// Sum computes the Blake3-256 hash of b.
func Sum(b []byte) Hash {
	var h Hash
	sum := blake3.Sum256(b)
	copy(h[:], sum[:])
	return h
}

// IsZero reports whether h is the distinguished zero hash.
func (h Hash) IsZero() bool {
	return h == Zero
}

// Bytes returns a copy of the hash's underlying bytes.
func (h Hash) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, h[:])
	return out
}

// String returns the lowercase hex encoding of h, with no prefix.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Less reports whether h sorts before other, lexicographically by byte
// value.
func (h Hash) Less(other Hash) bool {
	for i := range h {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// FromBytes builds a Hash from raw bytes. It returns an error if b is not
// exactly Size bytes long.
func FromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != Size {
		return h, &ErrInvalidLength{Got: len(b)}
	}
	copy(h[:], b)
	return h, nil
}

// FromHex parses the lowercase hex form produced by String.
func FromHex(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, err
	}
	return FromBytes(b)
}

// ErrInvalidLength is returned by FromBytes when the input isn't exactly
// Size bytes.
type ErrInvalidLength struct {
	Got int
}

func (e *ErrInvalidLength) Error() string {
	return fmt.Sprintf("xhash: invalid hash length: got %d bytes, want %d", e.Got, Size)
}
