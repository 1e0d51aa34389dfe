package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikeenlabs/gatepass/types"
)

var (
	alice = common.HexToAddress("0xa1")
	bob   = common.HexToAddress("0xb0")
	t1    = common.HexToAddress("0x11")
)

func record(payer common.Address, id uint64) types.Purchase {
	return types.Purchase{
		Payer:        payer,
		Asset:        t1,
		Amount:       big.NewInt(20_000000),
		CredentialID: id,
	}
}

func TestBeginCommit(t *testing.T) {
	l := New()

	require.NoError(t, l.Begin(alice))
	assert.False(t, l.HasPurchased(alice))

	require.NoError(t, l.Commit(record(alice, 0)))
	assert.True(t, l.HasPurchased(alice))
	assert.Equal(t, 1, l.Count())

	rec, err := l.PurchaseOf(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rec.CredentialID)
	assert.Equal(t, big.NewInt(20_000000), rec.Amount)
}

func TestBeginBlocksSecondPurchase(t *testing.T) {
	l := New()

	require.NoError(t, l.Begin(alice))

	// in-flight purchase holds the spot
	err := l.Begin(alice)
	assert.ErrorIs(t, err, types.AlreadyPurchased)

	require.NoError(t, l.Commit(record(alice, 0)))

	err = l.Begin(alice)
	assert.ErrorIs(t, err, types.AlreadyPurchased)

	// a different payer is unaffected
	require.NoError(t, l.Begin(bob))
}

func TestAbortReopensSpot(t *testing.T) {
	l := New()

	require.NoError(t, l.Begin(alice))
	l.Abort(alice)

	assert.False(t, l.HasPurchased(alice))
	require.NoError(t, l.Begin(alice))
}

func TestCommitWithoutBegin(t *testing.T) {
	l := New()

	err := l.Commit(record(alice, 0))
	assert.ErrorIs(t, err, types.NoPurchase)
}

func TestClear(t *testing.T) {
	l := New()

	err := l.Clear(alice)
	assert.ErrorIs(t, err, types.NoPurchase)

	require.NoError(t, l.Begin(alice))
	require.NoError(t, l.Commit(record(alice, 0)))
	require.NoError(t, l.Clear(alice))

	assert.False(t, l.HasPurchased(alice))
	_, err = l.PurchaseOf(alice)
	assert.ErrorIs(t, err, types.NoPurchase)

	// double refund guard
	err = l.Clear(alice)
	assert.ErrorIs(t, err, types.NoPurchase)

	// spot is purchasable again
	require.NoError(t, l.Begin(alice))
}

func TestPurchaseOfReturnsCopy(t *testing.T) {
	l := New()

	require.NoError(t, l.Begin(alice))
	require.NoError(t, l.Commit(record(alice, 0)))

	rec, _ := l.PurchaseOf(alice)
	rec.Amount.SetInt64(1)

	again, _ := l.PurchaseOf(alice)
	assert.Equal(t, int64(20_000000), again.Amount.Int64())
}
