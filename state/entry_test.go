package state

import (
	"math/big"
	"testing"

	"github.com/andromeda-dag/node/xsig"
	"github.com/stretchr/testify/require"
)

func addr(b byte) xsig.Address {
	var a xsig.Address
	a[0] = b
	return a
}

func TestExecuteBootstrap(t *testing.T) {
	sender, recipient := addr(1), addr(2)

	entry, err := Execute(nil, sender, recipient, big.NewInt(100), 0)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(100), entry.Balance(recipient))
	require.Equal(t, big.NewInt(0), entry.Balance(sender))
	require.Equal(t, uint64(0), entry.Nonce(sender))
	require.False(t, entry.Hash.IsZero())
}

func TestExecuteInductive(t *testing.T) {
	sender, recipient := addr(1), addr(2)

	genesis, err := Execute(nil, addr(9), sender, big.NewInt(100), 0)
	require.NoError(t, err)

	next, err := Execute(genesis, sender, recipient, big.NewInt(40), 1)
	require.NoError(t, err)

	require.Equal(t, big.NewInt(60), next.Balance(sender))
	require.Equal(t, big.NewInt(40), next.Balance(recipient))
	require.Equal(t, uint64(1), next.Nonce(sender))
}

func TestExecuteSelfTransferLeavesBalanceUnchanged(t *testing.T) {
	owner := addr(1)

	genesis, err := Execute(nil, addr(9), owner, big.NewInt(100), 0)
	require.NoError(t, err)

	next, err := Execute(genesis, owner, owner, big.NewInt(40), 1)
	require.NoError(t, err)

	require.Equal(t, big.NewInt(100), next.Balance(owner))
	require.Equal(t, uint64(1), next.Nonce(owner))
}

func TestExecuteRejectsInsufficientBalance(t *testing.T) {
	sender, recipient := addr(1), addr(2)

	genesis, err := Execute(nil, addr(9), sender, big.NewInt(10), 0)
	require.NoError(t, err)

	_, err = Execute(genesis, sender, recipient, big.NewInt(11), 1)
	require.ErrorIs(t, err, ErrInsufficientBalance)
}

func TestHashDeterministicRegardlessOfMapOrder(t *testing.T) {
	e1 := seal(map[xsig.Address]*big.Int{
		addr(1): big.NewInt(5),
		addr(2): big.NewInt(7),
	}, map[xsig.Address]uint64{
		addr(1): 3,
		addr(2): 1,
	})
	e2 := seal(map[xsig.Address]*big.Int{
		addr(2): big.NewInt(7),
		addr(1): big.NewInt(5),
	}, map[xsig.Address]uint64{
		addr(2): 1,
		addr(1): 3,
	})

	require.Equal(t, e1.Hash, e2.Hash)
}

func TestEmptyEntryIsBootstrapTrigger(t *testing.T) {
	empty := NewEmptyEntry()
	sender, recipient := addr(1), addr(2)

	viaNil, err := Execute(nil, sender, recipient, big.NewInt(5), 0)
	require.NoError(t, err)
	viaEmpty, err := Execute(empty, sender, recipient, big.NewInt(5), 0)
	require.NoError(t, err)

	require.Equal(t, viaNil.Hash, viaEmpty.Hash)
}
