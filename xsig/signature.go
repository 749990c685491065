package xsig

import (
	"crypto/ed25519"
	"errors"

	"github.com/andromeda-dag/node/xhash"
)

// ErrInvalidSignature is returned when a Signature fails verification,
// either because the embedded public key doesn't parse or the signature
// bytes don't check out. Corresponds to spec §7's InvalidSignature kind.
var ErrInvalidSignature = errors.New("xsig: invalid signature")

// Signature pairs a public key with a signature over a message hash, as
// described in spec §3. It is the wire-level pair used to both verify a
// signature and recover the signer's Address.
type Signature struct {
	PublicKeyBytes []byte
	SignatureBytes []byte
}

// Sign produces a Signature over messageHash using priv.
func Sign(priv ed25519.PrivateKey, messageHash xhash.Hash) Signature {
	sig := ed25519.Sign(priv, messageHash[:])
	pub := priv.Public().(ed25519.PublicKey)
	return Signature{
		PublicKeyBytes: append([]byte(nil), pub...),
		SignatureBytes: sig,
	}
}

// Verify reports whether s is a valid Ed25519 signature of messageHash
// under s.PublicKeyBytes. It only checks cryptographic validity; callers
// must separately confirm the recovered address matches the claimed
// sender (spec §3 invariant 2).
func (s Signature) Verify(messageHash xhash.Hash) bool {
	if len(s.PublicKeyBytes) != ed25519.PublicKeySize {
		return false
	}
	if len(s.SignatureBytes) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(s.PublicKeyBytes), messageHash[:], s.SignatureBytes)
}

// Address recovers the Address implied by the signature's embedded public
// key, regardless of whether the signature itself verifies.
func (s Signature) Address() Address {
	return AddressFromPublicKey(ed25519.PublicKey(s.PublicKeyBytes))
}

// VerifyAndAuthenticate verifies s over messageHash and additionally
// checks that the signer's derived address equals sender, satisfying
// spec §3 invariant 2 and the InvalidSignature error kind in §7.
func VerifyAndAuthenticate(s Signature, messageHash xhash.Hash, sender Address) error {
	if !s.Verify(messageHash) {
		return ErrInvalidSignature
	}
	if s.Address() != sender {
		return ErrInvalidSignature
	}
	return nil
}
