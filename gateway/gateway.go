// Package gateway orchestrates fee collection: pulling an accepted asset from
// the payer, or wrapping a bare native deposit, then recording the purchase
// and minting the credential as one unit.
//
// Reentrancy is handled checkpoint-then-call: the ledger marks the payer
// pending before any external transfer is issued, so an asset that calls back
// into the gate mid-transfer fails the already-purchased guard. Any failure
// after funds moved pushes them back before the error is surfaced, keeping
// every call all-or-nothing.
package gateway

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ikeenlabs/gatepass/credential"
	"github.com/ikeenlabs/gatepass/ledger"
	"github.com/ikeenlabs/gatepass/logger"
	"github.com/ikeenlabs/gatepass/registry"
	"github.com/ikeenlabs/gatepass/token"
	"github.com/ikeenlabs/gatepass/types"
)

// Config wires a Gateway. All fields are required except Wrapped and
// WrappedAsset, which are only needed when native deposits are accepted, and
// Logger, which defaults to a no-op.
type Config struct {
	Registry     *registry.Registry
	Ledger       *ledger.Ledger
	Credentials  *credential.Issuer
	Tokens       map[common.Address]token.ERC20
	Wrapped      token.WrappedNative
	WrappedAsset common.Address
	Custody      common.Address
	Logger       logger.Logger
}

type Gateway struct {
	cfg Config
}

func New(cfg Config) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = logger.NoopLogger{}
	}
	return &Gateway{cfg: cfg}
}

// BuySpot purchases a membership spot with an accepted asset. The exact fee is
// pulled from the payer via the asset's transferFrom; the payer must have
// approved the custody account beforehand. Balance and allowance checks are
// the asset's own.
func (g *Gateway) BuySpot(ctx context.Context, payer, asset common.Address) (types.Purchase, error) {
	if err := g.cfg.Ledger.Begin(payer); err != nil {
		return types.Purchase{}, err
	}

	amount, err := g.cfg.Registry.Lookup(asset)
	if err != nil {
		g.cfg.Ledger.Abort(payer)
		return types.Purchase{}, err
	}

	erc20, ok := g.cfg.Tokens[asset]
	if !ok {
		g.cfg.Ledger.Abort(payer)
		return types.Purchase{}, &types.GateError{
			Code:    types.ErrUnsupportedAsset,
			Message: fmt.Sprintf("no transfer handle for asset %s", asset.Hex()),
		}
	}

	if err := erc20.TransferFrom(ctx, payer, g.cfg.Custody, amount); err != nil {
		g.cfg.Ledger.Abort(payer)
		return types.Purchase{}, &types.GateError{
			Code:    types.ErrTransferFailed,
			Message: fmt.Sprintf("pulling %s of %s from %s failed", amount, asset.Hex(), payer.Hex()),
			Err:     err,
		}
	}

	rec, err := g.issue(payer, asset, amount)
	if err != nil {
		// funds were pulled, push them back before surfacing
		if rbErr := erc20.Transfer(ctx, payer, amount); rbErr != nil {
			g.cfg.Logger.Error("returning pulled fee after failed issue also failed, funds stranded in custody", map[string]any{
				"payer": payer.Hex(), "asset": asset.Hex(), "amount": amount.String(), "error": rbErr.Error(),
			})
		}
		g.cfg.Ledger.Abort(payer)
		return types.Purchase{}, err
	}
	return rec, nil
}

// OnNativeDeposit is the bare value-transfer entry point: the platform runtime
// invokes it when native currency arrives with no explicit call. The deposit
// is rejected outright, never accepted-then-refunded, unless the sender has no
// spot yet, the wrapped-native asset is configured, and the amount matches its
// fee exactly.
func (g *Gateway) OnNativeDeposit(ctx context.Context, sender common.Address, amount *big.Int) (types.Purchase, error) {
	if err := g.cfg.Ledger.Begin(sender); err != nil {
		return types.Purchase{}, err
	}

	if g.cfg.Wrapped == nil || !g.cfg.Registry.IsSupported(g.cfg.WrappedAsset) {
		g.cfg.Ledger.Abort(sender)
		return types.Purchase{}, &types.GateError{
			Code:    types.ErrUnsupportedAsset,
			Message: "native deposits are not accepted",
		}
	}

	required, err := g.cfg.Registry.Lookup(g.cfg.WrappedAsset)
	if err != nil {
		g.cfg.Ledger.Abort(sender)
		return types.Purchase{}, err
	}
	if amount == nil || amount.Cmp(required) != 0 {
		g.cfg.Ledger.Abort(sender)
		return types.Purchase{}, &types.GateError{
			Code:    types.ErrTransferFailed,
			Message: fmt.Sprintf("deposit of %s does not match the required fee %s", amount, required),
		}
	}

	if err := g.cfg.Wrapped.Deposit(ctx, amount); err != nil {
		g.cfg.Ledger.Abort(sender)
		return types.Purchase{}, &types.GateError{
			Code:    types.ErrTransferFailed,
			Message: "wrapping native deposit failed",
			Err:     err,
		}
	}

	rec, err := g.issue(sender, g.cfg.WrappedAsset, amount)
	if err != nil {
		// unwrap so the rejected value can flow back to the sender
		if rbErr := g.cfg.Wrapped.Withdraw(ctx, amount); rbErr != nil {
			g.cfg.Logger.Error("unwrapping rejected native deposit failed, value stranded wrapped", map[string]any{
				"sender": sender.Hex(), "amount": amount.String(), "error": rbErr.Error(),
			})
		}
		g.cfg.Ledger.Abort(sender)
		return types.Purchase{}, err
	}
	return rec, nil
}

// issue mints the credential and commits the ledger record. The caller holds
// the pending checkpoint, so no observable state exists where one side of the
// record-and-mint pair is missing.
func (g *Gateway) issue(payer, asset common.Address, amount *big.Int) (types.Purchase, error) {
	id, err := g.cfg.Credentials.Mint(payer)
	if err != nil {
		return types.Purchase{}, err
	}

	rec := types.Purchase{
		Payer:        payer,
		Asset:        asset,
		Amount:       amount,
		CredentialID: id,
		PurchasedAt:  time.Now().UTC(),
	}
	if err := g.cfg.Ledger.Commit(rec); err != nil {
		return types.Purchase{}, err
	}
	return rec, nil
}
