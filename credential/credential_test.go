package credential

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikeenlabs/gatepass/types"
)

var (
	alice    = common.HexToAddress("0xa1")
	bob      = common.HexToAddress("0xb0")
	operator = common.HexToAddress("0x0e")
)

func TestMintSequentialIDs(t *testing.T) {
	i := New()

	id, err := i.Mint(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	id, err = i.Mint(bob)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	assert.Equal(t, uint64(2), i.TotalMinted())

	owner, err := i.OwnerOf(0)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)

	assert.Equal(t, 1, i.BalanceOf(alice))
	assert.Equal(t, 0, i.BalanceOf(operator))

	held, ok := i.HeldBy(bob)
	require.True(t, ok)
	assert.Equal(t, uint64(1), held)
}

func TestMintRejectsSecondCredential(t *testing.T) {
	i := New()

	_, err := i.Mint(alice)
	require.NoError(t, err)

	_, err = i.Mint(alice)
	assert.ErrorIs(t, err, types.AlreadyHoldsCredential)
	assert.Equal(t, uint64(1), i.TotalMinted())
}

func TestOwnerOfUnknown(t *testing.T) {
	i := New()

	_, err := i.OwnerOf(42)
	assert.ErrorIs(t, err, types.NoPurchase)
}

func TestTransfersAlwaysDisabled(t *testing.T) {
	i := New()

	id, err := i.Mint(alice)
	require.NoError(t, err)

	attempts := []struct {
		name string
		call func() error
	}{
		{"holder transfer", func() error { return i.TransferFrom(alice, alice, bob, id) }},
		{"operator transfer", func() error { return i.TransferFrom(operator, alice, bob, id) }},
		{"safe transfer", func() error { return i.SafeTransferFrom(alice, alice, bob, id) }},
		{"approve", func() error { return i.Approve(alice, operator, id) }},
		{"approval for all", func() error { return i.SetApprovalForAll(alice, operator, true) }},
	}

	for _, a := range attempts {
		t.Run(a.name, func(t *testing.T) {
			err := a.call()
			assert.ErrorIs(t, err, types.TransferDisabled)

			owner, err := i.OwnerOf(id)
			require.NoError(t, err)
			assert.Equal(t, alice, owner)
		})
	}
}
