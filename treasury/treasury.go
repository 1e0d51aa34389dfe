// Package treasury holds the issuer-only administration: sweeping collected
// fees and granting spots without payment.
package treasury

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ikeenlabs/gatepass/credential"
	"github.com/ikeenlabs/gatepass/ledger"
	"github.com/ikeenlabs/gatepass/token"
	"github.com/ikeenlabs/gatepass/types"
)

type Ops struct {
	issuer      common.Address
	custody     common.Address
	ledger      *ledger.Ledger
	credentials *credential.Issuer
	tokens      map[common.Address]token.ERC20

	withdrawMu sync.Mutex
}

func New(
	issuer, custody common.Address,
	l *ledger.Ledger,
	c *credential.Issuer,
	tokens map[common.Address]token.ERC20,
) *Ops {
	return &Ops{issuer: issuer, custody: custody, ledger: l, credentials: c, tokens: tokens}
}

// Withdraw sweeps the full custody balance of one asset to the issuer. No
// partial amounts, no destination override. A zero balance succeeds as a
// no-op. Returns the amount moved.
//
// Sweeps are serialized so the balance read and the transfer it sizes act as
// one step; a second sweep waits and sees the already-emptied custody.
func (o *Ops) Withdraw(ctx context.Context, caller, asset common.Address) (*big.Int, error) {
	if caller != o.issuer {
		return nil, unauthorized(caller)
	}

	o.withdrawMu.Lock()
	defer o.withdrawMu.Unlock()

	erc20, ok := o.tokens[asset]
	if !ok {
		return nil, &types.GateError{
			Code:    types.ErrUnsupportedAsset,
			Message: fmt.Sprintf("no transfer handle for asset %s", asset.Hex()),
		}
	}

	balance, err := erc20.BalanceOf(ctx, o.custody)
	if err != nil {
		return nil, &types.GateError{
			Code:    types.ErrTransferFailed,
			Message: fmt.Sprintf("reading custody balance of %s failed", asset.Hex()),
			Err:     err,
		}
	}
	if balance.Sign() == 0 {
		return balance, nil
	}

	if err := erc20.Transfer(ctx, o.issuer, balance); err != nil {
		return nil, &types.GateError{
			Code:    types.ErrTransferFailed,
			Message: fmt.Sprintf("withdrawing %s of %s failed", balance, asset.Hex()),
			Err:     err,
		}
	}
	return balance, nil
}

// Grant records a free spot for an address and mints its credential. Same
// invariants as a paid purchase, except no funds move and the entry is marked
// with the grant sentinel so it can never be refunded.
func (o *Ops) Grant(ctx context.Context, caller, to common.Address) (types.Purchase, error) {
	if caller != o.issuer {
		return types.Purchase{}, unauthorized(caller)
	}

	if err := o.ledger.Begin(to); err != nil {
		return types.Purchase{}, err
	}

	id, err := o.credentials.Mint(to)
	if err != nil {
		o.ledger.Abort(to)
		return types.Purchase{}, err
	}

	rec := types.Purchase{
		Payer:        to,
		Asset:        types.GrantAsset,
		Amount:       big.NewInt(0),
		CredentialID: id,
		Granted:      true,
		PurchasedAt:  time.Now().UTC(),
	}
	if err := o.ledger.Commit(rec); err != nil {
		o.ledger.Abort(to)
		return types.Purchase{}, err
	}
	return rec, nil
}

func unauthorized(caller common.Address) *types.GateError {
	return &types.GateError{
		Code:    types.ErrUnauthorized,
		Message: fmt.Sprintf("%s is not the issuer", caller.Hex()),
	}
}
