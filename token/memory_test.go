package token

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice   = common.HexToAddress("0xa1")
	bob     = common.HexToAddress("0xb0")
	spender = common.HexToAddress("0x5e")
)

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	usdc := NewMemory("USDC")
	usdc.Mint(alice, big.NewInt(100))

	require.NoError(t, usdc.Bound(alice).Transfer(ctx, bob, big.NewInt(40)))
	assert.Equal(t, big.NewInt(60), usdc.Balance(alice))
	assert.Equal(t, big.NewInt(40), usdc.Balance(bob))

	err := usdc.Bound(alice).Transfer(ctx, bob, big.NewInt(61))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, big.NewInt(60), usdc.Balance(alice))
}

func TestTransferFromNeedsAllowance(t *testing.T) {
	ctx := context.Background()
	usdc := NewMemory("USDC")
	usdc.Mint(alice, big.NewInt(100))

	err := usdc.Bound(spender).TransferFrom(ctx, alice, bob, big.NewInt(10))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, usdc.Bound(alice).Approve(ctx, spender, big.NewInt(30)))
	require.NoError(t, usdc.Bound(spender).TransferFrom(ctx, alice, bob, big.NewInt(10)))
	assert.Equal(t, big.NewInt(10), usdc.Balance(bob))

	// allowance is spent down
	err = usdc.Bound(spender).TransferFrom(ctx, alice, bob, big.NewInt(25))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
}

// A zero-amount transferFrom needs no prior approval, matching ERC20 semantics
// where any allowance covers zero.
func TestTransferFromZeroWithoutApproval(t *testing.T) {
	ctx := context.Background()
	usdc := NewMemory("USDC")

	require.NoError(t, usdc.Bound(spender).TransferFrom(ctx, alice, bob, big.NewInt(0)))
	assert.Zero(t, usdc.Balance(alice).Sign())
	assert.Zero(t, usdc.Balance(bob).Sign())
}

func TestWrappedDepositWithdraw(t *testing.T) {
	ctx := context.Background()
	weth := NewWrappedMemory("WETH")
	handle := weth.Bound(alice)

	require.NoError(t, handle.Deposit(ctx, big.NewInt(5)))
	assert.Equal(t, big.NewInt(5), weth.Balance(alice))

	err := handle.Withdraw(ctx, big.NewInt(6))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, handle.Withdraw(ctx, big.NewInt(5)))
	assert.Zero(t, weth.Balance(alice).Sign())
}
