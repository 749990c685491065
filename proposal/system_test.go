package proposal

import (
	"crypto/ed25519"
	"math/big"
	"testing"

	"github.com/andromeda-dag/node/dag"
	"github.com/andromeda-dag/node/xhash"
	"github.com/andromeda-dag/node/xsig"
	"github.com/stretchr/testify/require"
)

func newAddress(t *testing.T) (ed25519.PrivateKey, xsig.Address) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv, xsig.AddressFromPublicKey(pub)
}

func appendProposal(t *testing.T, name string, tx *dag.Transaction) *Proposal {
	t.Helper()
	return NewProposal(name, ProposalData{
		Path: TargetLedgerTransactions,
		Operation: Operation{
			Kind:          Append,
			ValueToAppend: dag.EncodeTransaction(tx),
		},
	})
}

func newGraphWithFundedRecipient(t *testing.T) (*dag.Graph, ed25519.PrivateKey, xsig.Address) {
	t.Helper()
	rootPriv, sender := newAddress(t)
	recipientPriv, recipient := newAddress(t)

	root := dag.NewTransaction(0, sender, recipient, big.NewInt(100), nil, []xhash.Hash{xhash.Zero})
	require.NoError(t, dag.Sign(root, rootPriv))

	g := dag.NewGraph(root)
	return g, recipientPriv, recipient
}

func TestExecuteProposalAppendsTransaction(t *testing.T) {
	g, recipientPriv, recipient := newGraphWithFundedRecipient(t)
	root, err := g.GetHeader(0)
	require.NoError(t, err)

	_, someoneElse := newAddress(t)
	sysKeypair, _ := newAddress(t)
	sys := NewSystem(g, sysKeypair)

	child := dag.NewTransaction(0, recipient, someoneElse, big.NewInt(10), nil, []xhash.Hash{root.Hash})
	require.NoError(t, dag.Sign(child, recipientPriv))

	p := appendProposal(t, "sync_child", child)
	sys.PushProposal(p)

	require.NoError(t, sys.ExecuteProposal(p.ProposalID))
	require.Equal(t, 2, g.Len())

	node, err := g.GetWithHash(child.Hash)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(10), node.StateEntry.Balance(someoneElse))
}

func TestExecuteProposalUnknownTargetRejected(t *testing.T) {
	priv, _ := newAddress(t)
	_, sender := newAddress(t)
	_, recipient := newAddress(t)
	root := dag.NewTransaction(0, sender, recipient, big.NewInt(1), nil, []xhash.Hash{xhash.Zero})
	g := dag.NewGraph(root)
	sys := NewSystem(g, priv)

	p := NewProposal("bogus", ProposalData{Path: "ledger::not-a-real-path", Operation: Operation{Kind: Remove}})
	sys.PushProposal(p)

	err := sys.ExecuteProposal(p.ProposalID)
	var unknown *UnknownTarget
	require.ErrorAs(t, err, &unknown)
}

func TestExecuteProposalSameIDTwiceIsIdempotent(t *testing.T) {
	g, recipientPriv, recipient := newGraphWithFundedRecipient(t)
	root, err := g.GetHeader(0)
	require.NoError(t, err)

	_, someoneElse := newAddress(t)
	sysKeypair, _ := newAddress(t)
	sys := NewSystem(g, sysKeypair)

	child := dag.NewTransaction(0, recipient, someoneElse, big.NewInt(10), nil, []xhash.Hash{root.Hash})
	require.NoError(t, dag.Sign(child, recipientPriv))

	p := appendProposal(t, "sync_child", child)
	sys.PushProposal(p)
	require.NoError(t, sys.ExecuteProposal(p.ProposalID))

	// Re-executing the same proposal ID after it has already run and been
	// removed from the pending set must surface as AlreadyExecuted, not a
	// lookup failure, and must not append anything.
	err = sys.ExecuteProposal(p.ProposalID)
	var already *dag.AlreadyExecuted
	require.ErrorAs(t, err, &already)
	require.Equal(t, 2, g.Len())
}

func TestExecuteProposalRejectsNonGenesisTransactionWithNoParents(t *testing.T) {
	g, recipientPriv, recipient := newGraphWithFundedRecipient(t)

	_, someoneElse := newAddress(t)
	sysKeypair, _ := newAddress(t)
	sys := NewSystem(g, sysKeypair)

	orphan := dag.NewTransaction(0, recipient, someoneElse, big.NewInt(10), nil, nil)
	require.NoError(t, dag.Sign(orphan, recipientPriv))
	require.False(t, orphan.Genesis)

	p := appendProposal(t, "sync_child", orphan)
	sys.PushProposal(p)

	err := sys.ExecuteProposal(p.ProposalID)
	require.ErrorIs(t, err, dag.ErrMissingParents)
	require.Equal(t, 1, g.Len())
}

func TestExecuteProposalAppendingKnownTransactionIsAlreadyExecuted(t *testing.T) {
	g, recipientPriv, recipient := newGraphWithFundedRecipient(t)
	root, err := g.GetHeader(0)
	require.NoError(t, err)

	_, someoneElse := newAddress(t)
	sysKeypair, _ := newAddress(t)
	sys := NewSystem(g, sysKeypair)

	child := dag.NewTransaction(0, recipient, someoneElse, big.NewInt(10), nil, []xhash.Hash{root.Hash})
	require.NoError(t, dag.Sign(child, recipientPriv))

	first := appendProposal(t, "sync_child", child)
	sys.PushProposal(first)
	require.NoError(t, sys.ExecuteProposal(first.ProposalID))

	// A distinct proposal wrapping the same already-appended transaction
	// bytes surfaces as AlreadyExecuted rather than a duplicate push.
	second := appendProposal(t, "sync_child_retry", child)
	sys.PushProposal(second)

	err = sys.ExecuteProposal(second.ProposalID)
	var already *dag.AlreadyExecuted
	require.ErrorAs(t, err, &already)
}
