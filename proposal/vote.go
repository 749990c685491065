package proposal

import (
	"crypto/ed25519"

	"github.com/andromeda-dag/node/xcodec"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
)

// Vote is a binary, signed opinion on a proposal. Grounded on
// original_source/src/core/sys/vote.rs's Vote; the Go port keeps its rule
// that the signature is always computed over the vote with Signature
// cleared, so a vote's hash is stable regardless of whether it's signed
// yet.
type Vote struct {
	TargetProposal xhash.Hash
	InFavor        bool
	Signature      *xsig.Signature
}

// Hash returns the stable hash of the vote's content, excluding any
// signature.
func (v Vote) Hash() xhash.Hash {
	w := xcodec.NewWriter()
	w.BytesField(v.TargetProposal.Bytes())
	w.Bool(v.InFavor)
	return xhash.Sum(w.Bytes())
}

// NewSignedVote builds and signs a vote in favor or against target using
// priv.
func NewSignedVote(target xhash.Hash, inFavor bool, priv ed25519.PrivateKey) Vote {
	v := Vote{TargetProposal: target, InFavor: inFavor}
	sig := xsig.Sign(priv, v.Hash())
	v.Signature = &sig
	return v
}

// Valid reports whether the vote carries a signature that verifies
// against its own (signature-excluded) hash.
func (v Vote) Valid() bool {
	if v.Signature == nil {
		return false
	}
	return v.Signature.Verify(v.Hash())
}
