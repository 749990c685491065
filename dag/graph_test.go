package dag

import (
	"math/big"
	"os"
	"testing"

	"github.com/andromeda-dag/node/state"
	"github.com/andromeda-dag/node/xhash"
	"github.com/stretchr/testify/require"
)

func TestNewGraphSeedsGenesisNode(t *testing.T) {
	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)

	root := NewTransaction(0, sender, recipient, big.NewInt(100), nil, []xhash.Hash{xhash.Zero})
	g := NewGraph(root)

	require.Equal(t, 1, g.Len())
	node, err := g.GetWithHash(root.Hash)
	require.NoError(t, err)
	require.NotNil(t, node.StateEntry)
	require.Equal(t, big.NewInt(100), node.StateEntry.Balance(recipient))
}

func TestPushTracksChildren(t *testing.T) {
	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)

	root := NewTransaction(0, sender, recipient, big.NewInt(100), nil, []xhash.Hash{xhash.Zero})
	g := NewGraph(root)

	child := NewTransaction(1, recipient, sender, big.NewInt(10), nil, []xhash.Hash{root.Hash})
	index := g.Push(child, nil)
	require.Equal(t, 1, index)

	children := g.Children(root.Hash)
	require.Equal(t, []xhash.Hash{child.Hash}, children)
}

func TestGetWithHashUnknownReturnsNoLookupResults(t *testing.T) {
	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)
	root := NewTransaction(0, sender, recipient, big.NewInt(1), nil, []xhash.Hash{xhash.Zero})
	g := NewGraph(root)

	_, err := g.GetWithHash(xhash.Sum([]byte("nowhere")))
	var notFound *NoLookupResults
	require.ErrorAs(t, err, &notFound)
}

func TestResolveParentNodesMergesAcrossMultipleParents(t *testing.T) {
	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)
	root := NewTransaction(0, sender, recipient, big.NewInt(100), nil, []xhash.Hash{xhash.Zero})
	g := NewGraph(root)

	child1 := NewTransaction(1, recipient, sender, big.NewInt(10), nil, []xhash.Hash{root.Hash})
	parentState1, _, err := g.ResolveParentNodes(child1.Data.Parents)
	require.NoError(t, err)
	entry1, err := state.Execute(parentState1, child1.Data.Sender, child1.Data.Recipient, child1.Data.Value, child1.Data.Nonce)
	require.NoError(t, err)
	g.Push(child1, entry1)

	child2 := NewTransaction(1, recipient, sender, big.NewInt(20), nil, []xhash.Hash{root.Hash})
	parentState2, _, err := g.ResolveParentNodes(child2.Data.Parents)
	require.NoError(t, err)
	entry2, err := state.Execute(parentState2, child2.Data.Sender, child2.Data.Recipient, child2.Data.Value, child2.Data.Nonce)
	require.NoError(t, err)
	g.Push(child2, entry2)

	merged, perParent, err := g.ResolveParentNodes([]xhash.Hash{child1.Hash, child2.Hash})
	require.NoError(t, err)
	require.Len(t, perParent, 2)
	require.NotNil(t, merged)
}

func TestResolveParentNodesUnresolvedErrors(t *testing.T) {
	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)
	root := NewTransaction(0, sender, recipient, big.NewInt(100), nil, []xhash.Hash{xhash.Zero})
	g := NewGraph(root)

	child := NewTransaction(1, recipient, sender, big.NewInt(10), nil, []xhash.Hash{root.Hash})
	g.Push(child, nil)

	_, _, err := g.ResolveParentNodes([]xhash.Hash{child.Hash})
	require.ErrorIs(t, err, ErrStateUnresolved)
}

func TestObtainExecutedHeadFindsMostRecentResolvedNode(t *testing.T) {
	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)
	root := NewTransaction(0, sender, recipient, big.NewInt(100), nil, []xhash.Hash{xhash.Zero})
	g := NewGraph(root)

	unresolved := NewTransaction(1, recipient, sender, big.NewInt(5), nil, []xhash.Hash{root.Hash})
	g.Push(unresolved, nil)

	head, ok := g.ObtainExecutedHead()
	require.True(t, ok)
	require.Equal(t, root.Hash, head.Hash)
}

func TestStoreRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "dag-store-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	store, err := OpenStore(dir)
	require.NoError(t, err)
	defer store.Close()

	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)
	root := NewTransaction(0, sender, recipient, big.NewInt(42), []byte("genesis"), []xhash.Hash{xhash.Zero})
	g := NewGraph(root)
	g.Attach(store)

	require.NoError(t, store.WriteGraph(g))

	reloaded, err := ReadGraph(store, false)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.Len())

	node, err := reloaded.GetWithHash(root.Hash)
	require.NoError(t, err)
	require.Equal(t, root.Hash, node.Transaction.Hash)
	require.Equal(t, big.NewInt(42), node.StateEntry.Balance(recipient))
}

func TestReadGraphHeadersOnlyDropsState(t *testing.T) {
	dir, err := os.MkdirTemp("", "dag-store-*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	store, err := OpenStore(dir)
	require.NoError(t, err)
	defer store.Close()

	_, sender := newKeyedAddress(t)
	_, recipient := newKeyedAddress(t)
	root := NewTransaction(0, sender, recipient, big.NewInt(42), nil, []xhash.Hash{xhash.Zero})
	g := NewGraph(root)
	require.NoError(t, store.WriteGraph(g))

	reloaded, err := ReadGraph(store, true)
	require.NoError(t, err)
	node, err := reloaded.GetHeader(0)
	require.NoError(t, err)
	require.Nil(t, node.StateEntry)
}
