// Package token defines the fungible-asset surface the gate relies on and the
// implementations behind it. Assets are trusted external services: the gate
// never re-checks balances or allowances itself and propagates their transfer
// errors verbatim.
package token

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ERC20 is a handle to one fungible asset, bound to an acting account.
// Transfer and Approve act from the bound account; TransferFrom spends an
// allowance previously granted to it.
type ERC20 interface {
	Transfer(ctx context.Context, to common.Address, amount *big.Int) error
	TransferFrom(ctx context.Context, from, to common.Address, amount *big.Int) error
	Approve(ctx context.Context, spender common.Address, amount *big.Int) error
	BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error)
}

// WrappedNative is the wrap service for the native settlement currency.
// Deposit wraps native value into the bound account's balance; Withdraw
// unwraps back to native.
type WrappedNative interface {
	ERC20
	Deposit(ctx context.Context, amount *big.Int) error
	Withdraw(ctx context.Context, amount *big.Int) error
}
