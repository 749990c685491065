package dag

import (
	"crypto/ed25519"
	"math/big"
	"testing"

	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
	"github.com/stretchr/testify/require"
)

func newKeyedAddress(t *testing.T) (ed25519.PrivateKey, xsig.Address) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv, xsig.AddressFromPublicKey(pub)
}

func TestNewTransactionGenesisFlag(t *testing.T) {
	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)

	tx := NewTransaction(0, sender, recipient, big.NewInt(10), nil, []xhash.Hash{xhash.Zero})
	require.True(t, tx.Genesis)

	tx2 := NewTransaction(0, sender, recipient, big.NewInt(10), nil, []xhash.Hash{tx.Hash})
	require.False(t, tx2.Genesis)
}

func TestSignAndVerify(t *testing.T) {
	priv, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)

	tx := NewTransaction(0, sender, recipient, big.NewInt(5), []byte("payload"), []xhash.Hash{xhash.Zero})
	require.NoError(t, Sign(tx, priv))
	require.True(t, tx.VerifySignature())
}

func TestSignRejectsWrongKey(t *testing.T) {
	_, sender := newKeyedAddress(t)
	otherPriv, _ := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)

	tx := NewTransaction(0, sender, recipient, big.NewInt(5), nil, []xhash.Hash{xhash.Zero})
	err := Sign(tx, otherPriv)
	require.ErrorIs(t, err, ErrSenderKeyMismatch)
}

func TestRegisterParentalStateRehashesTransaction(t *testing.T) {
	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)

	parentHash := xhash.Sum([]byte("parent"))
	tx := NewTransaction(1, sender, recipient, big.NewInt(1), nil, []xhash.Hash{parentHash})
	before := tx.Hash

	merged := xhash.Sum([]byte("merged state"))
	tx.RegisterParentalState(&merged, map[xhash.Hash]xhash.Hash{
		parentHash: xhash.Sum([]byte("parent state")),
	})

	require.NotEqual(t, before, tx.Hash)
	require.NotNil(t, tx.Data.ParentStateHash)
	require.Equal(t, merged, *tx.Data.ParentStateHash)
	require.Len(t, tx.Data.ParentReceipts.AssociatedTransactions, 1)
}
