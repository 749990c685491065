package rpc

import (
	"context"
	"crypto/ed25519"
	"math/big"
	"testing"

	"github.com/andromeda-dag/node/account"
	"github.com/andromeda-dag/node/dag"
	"github.com/andromeda-dag/node/proposal"
	"github.com/andromeda-dag/node/syncer"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
	"github.com/stretchr/testify/require"
)

// newKeystoreBackedSender builds a FileKeystore holding a freshly generated
// mnemonic and returns it alongside the address and key it derives, so
// tests can exercise SignTransaction against a real on-disk keystore
// rather than a bare ed25519 key.
func newKeystoreBackedSender(t *testing.T) (*account.FileKeystore, xsig.Address, ed25519.PrivateKey) {
	t.Helper()

	ks := account.NewFileKeystore(t.TempDir()+"/ks.enc", []byte("pw"))
	priv, mnemonic, err := ks.Generate()
	require.NoError(t, err)
	require.NoError(t, ks.Save(mnemonic))

	return ks, account.Address(priv), priv
}

func newFundedSystem(t *testing.T) (sys *proposal.System, sender xsig.Address, ks *account.FileKeystore, recipient xsig.Address) {
	t.Helper()

	var senderPriv ed25519.PrivateKey
	ks, sender, senderPriv = newKeystoreBackedSender(t)

	rPub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	recipient = xsig.AddressFromPublicKey(rPub)

	genesis := dag.NewTransaction(0, sender, sender, big.NewInt(1000), nil, []xhash.Hash{xhash.Zero})
	require.NoError(t, dag.Sign(genesis, senderPriv))

	g := dag.NewGraph(genesis)
	sys = proposal.NewSystem(g, senderPriv)

	return sys, sender, ks, recipient
}

func TestServiceCreateSignPublishRoundTrip(t *testing.T) {
	sys, sender, ks, recipient := newFundedSystem(t)

	d := syncer.NewMemoryDHT()
	machine := syncer.NewMachine(d, sys, func() int { return 1 })
	svc, err := NewService(sys, machine, t.TempDir())
	require.NoError(t, err)

	tx, err := svc.CreateTransaction(sender, recipient, big.NewInt(100), []byte("payload"))
	require.NoError(t, err)
	require.Contains(t, svc.GetMemTransactions(), tx.Hash)

	sig, err := svc.SignTransaction(tx.Hash, ks)
	require.NoError(t, err)
	require.True(t, sig.Verify(tx.Hash))

	require.NoError(t, svc.PublishTransaction(context.Background(), tx.Hash))
	require.Contains(t, sys.Ledger().Hashes(), tx.Hash)
	require.NotContains(t, svc.GetMemTransactions(), tx.Hash)

	head, ok := sys.Ledger().ObtainExecutedHead()
	require.True(t, ok)
	require.Equal(t, big.NewInt(100), head.StateEntry.Balance(recipient))
}

func TestServiceCreateTransactionFailsWithoutResolvedHead(t *testing.T) {
	sys := proposal.NewSystem(dag.NewEmptyGraph(), nil)
	svc, err := NewService(sys, nil, t.TempDir())
	require.NoError(t, err)

	_, err = svc.CreateTransaction(xsig.ZeroAddress, xsig.ZeroAddress, big.NewInt(1), nil)
	require.ErrorIs(t, err, ErrHeadUnresolved)
}

func TestServiceListTransactionsIncludesGenesis(t *testing.T) {
	sys, _, _, _ := newFundedSystem(t)
	svc, err := NewService(sys, nil, t.TempDir())
	require.NoError(t, err)

	hashes := svc.ListTransactions()
	require.Len(t, hashes, 1)
}

func TestServiceRecoversStagedTransactionsAfterRestart(t *testing.T) {
	sys, sender, _, recipient := newFundedSystem(t)
	dataDir := t.TempDir()

	svc, err := NewService(sys, nil, dataDir)
	require.NoError(t, err)

	tx, err := svc.CreateTransaction(sender, recipient, big.NewInt(50), nil)
	require.NoError(t, err)

	// Simulate a restart: a fresh Service pointed at the same data
	// directory must recover the staged transaction from disk rather than
	// starting with an empty mempool.
	restarted, err := NewService(sys, nil, dataDir)
	require.NoError(t, err)

	require.Contains(t, restarted.GetMemTransactions(), tx.Hash)
}
