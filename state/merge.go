package state

import (
	"bytes"
	"math/big"

	"github.com/andromeda-dag/node/xsig"
)

// Merge combines a transaction's parent state entries into the single
// merged parental state that Execute should be run against. For each
// address, the balance is taken from whichever parent has the
// lexicographically largest state hash (a deterministic tie-break, not a
// sum or last-seen-wins rule), while each address's nonce is the maximum
// nonce seen for it across all parents. An empty parents list yields an
// empty sealed Entry, which Execute treats as the bootstrap case.
func Merge(parents []*Entry) *Entry {
	if len(parents) == 0 {
		return NewEmptyEntry()
	}
	if len(parents) == 1 {
		return parents[0]
	}

	winningHash := make(map[xsig.Address][]byte)
	balances := make(map[xsig.Address]*big.Int)
	nonces := make(map[xsig.Address]uint64)

	for _, p := range parents {
		hashBytes := p.Hash.Bytes()
		for addr, bal := range p.Balances {
			if prevHash, seen := winningHash[addr]; !seen || bytes.Compare(hashBytes, prevHash) > 0 {
				winningHash[addr] = hashBytes
				balances[addr] = new(big.Int).Set(bal)
			}
		}
		for addr, n := range p.Nonces {
			if cur, seen := nonces[addr]; !seen || n > cur {
				nonces[addr] = n
			}
		}
	}

	return seal(balances, nonces)
}
